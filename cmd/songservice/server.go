package main

import (
	"net/http"

	"github.com/MinhPhi2504/IE313.Q12/internal/app/songs"
	"github.com/MinhPhi2504/IE313.Q12/internal/assets"
	"github.com/MinhPhi2504/IE313.Q12/internal/http/middleware"
	"github.com/MinhPhi2504/IE313.Q12/internal/httpapi"
	"github.com/MinhPhi2504/IE313.Q12/internal/store"
)

func newHTTPHandler(cfg Config, dataStore *store.Store) http.Handler {
	resolver := assets.New(assets.Config{Root: cfg.UploadRoot})
	songSvc := songs.New(dataStore, resolver)

	handler := httpapi.New(songSvc).Routes()
	handler = middleware.CORS(cfg.AllowedOrigins)(handler)
	handler = middleware.RequestLogging()(handler)
	handler = middleware.Recovery()(handler)

	return handler
}
