package controllers

import (
	"net/http"

	"github.com/bedtex/dispatch-backend/api/middleware"
	"github.com/bedtex/dispatch-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "private", "status": "ok"}
		if actor, ok := middleware.ActorFromContext(r.Context()); ok {
			payload["role"] = string(actor.Role)
		}
		responses.WriteSuccess(w, payload)
	}
}
