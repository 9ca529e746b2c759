package httpapi

import "net/http"

func (r *router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r *router) handleReady(w http.ResponseWriter, req *http.Request) {
	if err := r.deps.Store.Ping(req.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not-ready", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (r *router) handleInfo(w http.ResponseWriter, req *http.Request) {
	payload := map[string]any{
		"name":        "supportbot",
		"environment": r.deps.Config.Environment,
	}
	if r.deps.Contexts != nil {
		payload["active_dialogues"] = r.deps.Contexts.Count()
	}
	if r.deps.Memory != nil {
		payload["memorized_users"] = r.deps.Memory.Count()
	}
	writeJSON(w, http.StatusOK, payload)
}
