// Package server provides the push-stream binding of the gateway: an HTTP
// server exposing research submission, the tool catalog and a shared event
// stream over Server-Sent Events and WebSocket.
//
// Usage:
//
//	srv, err := server.New(core, server.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	if err := srv.Listen(); err != nil {
//	    return err
//	}
//	srv.Start()
//	go srv.Serve()
//	defer srv.Shutdown(ctx)
package server

// @title SynapseFlow Gateway API
// @version 1.0
// @description Research gateway with live progress narration over SSE and WebSocket.
//
// @BasePath /
//
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
