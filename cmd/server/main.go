package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"stonehollow.dev/internal/sim/tuning"
	"stonehollow.dev/internal/sim/world"
	"stonehollow.dev/internal/sim/world/logic/pathfind"
	"stonehollow.dev/internal/transport/observer"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "world_1", "world id")
		seed       = flag.Int64("seed", 1337, "world seed")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		poiCX      = flag.Int("poi_cx", 0, "initial point-of-interest chunk column x")
		poiCZ      = flag.Int("poi_cz", 0, "initial point-of-interest chunk column z")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", *tuningPath)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	w, err := world.New(world.Config{
		ID:            strings.TrimSpace(*worldID),
		Seed:          *seed,
		TickRateHz:    tune.TickRateHz,
		WorldHeight:   tune.WorldHeight,
		SeaLevel:      tune.SeaLevel,
		LoadRadius:    tune.LoadRadius,
		UnloadMargin:  tune.UnloadMargin,
		MaxInFlight:   tune.MaxInFlight,
		BacklogBoost:  tune.BacklogBoost,
		MeshPerTick:   tune.MeshPerTick,
		PathMaxNodes:  tune.PathMaxNodes,
		PathDiagonals: tune.PathDiagonals,
	}, logger)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	obsSrv := observer.NewServer(w, logger)
	go obsSrv.Run(ctx)

	go func() {
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()

	// Seed the streaming point of interest so the world has work to do
	// before the first admin update arrives.
	w.POI() <- world.POIUpdate{CX: *poiCX, CZ: *poiCZ, Radius: tune.LoadRadius}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/admin/v1/poi", poiHandler(w))
	mux.HandleFunc("/admin/v1/path", pathHandler(w))
	mux.HandleFunc("/admin/v1/observer/bootstrap", obsSrv.BootstrapHandler())
	mux.HandleFunc("/admin/v1/observer/ws", obsSrv.WSHandler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

// POST {"cx":0,"cz":0,"radius":6}. Moves the streaming point of interest.
func poiHandler(w *world.World) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			CX     int `json:"cx"`
			CZ     int `json:"cz"`
			Radius int `json:"radius"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(rw, "bad request", http.StatusBadRequest)
			return
		}
		select {
		case w.POI() <- world.POIUpdate{CX: req.CX, CZ: req.CZ, Radius: req.Radius}:
			rw.WriteHeader(http.StatusAccepted)
		default:
			http.Error(rw, "busy", http.StatusServiceUnavailable)
		}
	}
}

// POST {"from":[x,y,z],"to":[x,y,z]}. Solves a walk over the loaded chunks.
func pathHandler(w *world.World) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			From [3]int `json:"from"`
			To   [3]int `json:"to"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(rw, "bad request", http.StatusBadRequest)
			return
		}

		reply := make(chan pathfind.Result, 1)
		select {
		case w.PathRequests() <- world.PathRequest{
			From:  pathfind.Node{X: req.From[0], Y: req.From[1], Z: req.From[2]},
			To:    pathfind.Node{X: req.To[0], Y: req.To[1], Z: req.To[2]},
			Reply: reply,
		}:
		default:
			http.Error(rw, "busy", http.StatusServiceUnavailable)
			return
		}

		var res pathfind.Result
		select {
		case res = <-reply:
		case <-time.After(5 * time.Second):
			http.Error(rw, "timeout", http.StatusGatewayTimeout)
			return
		}

		type waypoint struct {
			Cell  [3]int     `json:"cell"`
			Stand [3]float64 `json:"stand"`
		}
		out := struct {
			Found    bool       `json:"found"`
			Explored int        `json:"explored"`
			Path     []waypoint `json:"path,omitempty"`
		}{Found: res.Found, Explored: res.Explored}
		for _, n := range res.Path {
			p := n.StandPosition()
			out.Path = append(out.Path, waypoint{
				Cell:  [3]int{n.X, n.Y, n.Z},
				Stand: [3]float64{p.X(), p.Y(), p.Z()},
			})
		}

		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(out)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
