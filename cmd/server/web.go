package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"github.com/yubin-park/quizpin-server/internal/config"
	"github.com/yubin-park/quizpin-server/internal/handler"
	"github.com/yubin-park/quizpin-server/internal/room"
	"github.com/yubin-park/quizpin-server/internal/store"
	"github.com/yubin-park/quizpin-server/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Players connect from the game page's origin
	},
}

func serve(ctx context.Context, cfg *config.Config) error {
	st, err := store.NewFileStore(cfg.DataDir)
	if err != nil {
		return err
	}

	hub := ws.NewHub()
	rm := room.NewManager()
	router := handler.NewRouter(rm, st)

	hub.OnMessage = router.HandleMessage
	hub.OnDisconnect = router.HandleDisconnect

	go hub.Run()
	go rm.Run(ctx, cfg.RoomTTL)

	mux := httprouter.New()
	mux.GET("/healthz", serveHealth(hub, rm))
	mux.GET("/ws", serveWebSocket(hub))
	mux.GET("/rooms/:pin/qr", serveJoinQR(cfg, rm))

	addr := cfg.Addr()
	slog.Info("server starting", "addr", addr)
	return http.ListenAndServe(addr, mux)
}

func serveHealth(hub *ws.Hub, rm *room.Manager) httprouter.Handle {
	return func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","clients":%d,"rooms":%d}`, hub.ClientCount(), rm.RoomCount())
	}
}

func serveWebSocket(hub *ws.Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("websocket upgrade failed", "error", err)
			return
		}

		client := ws.NewClient(hub, conn)
		hub.Register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}

// serveJoinQR renders a PNG QR code of the join URL for a room so
// the admin can put it on screen.
func serveJoinQR(cfg *config.Config, rm *room.Manager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		pin := ps.ByName("pin")
		if rm.Get(pin) == nil {
			http.Error(w, "unknown room", http.StatusNotFound)
			return
		}

		base := cfg.PublicURL
		if base == "" {
			scheme := "http"
			if r.TLS != nil {
				scheme = "https"
			}
			if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
				scheme = proto
			}
			base = scheme + "://" + r.Host
		}

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(base+"/join?pin="+pin, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}
