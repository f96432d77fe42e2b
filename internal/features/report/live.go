package report

import (
	"context"
	"sync"

	"go-contractor/internal/engine"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

type liveConn interface {
	ReadJSON(v interface{}) error
	WriteJSON(v interface{}) error
}

// LiveController runs configurations as they arrive on a websocket. Runs
// overlap; only the newest completion reaches the client.
type LiveController struct {
	Service  ReportService
	Recorder Recorder
	Logger   *zap.Logger
}

func NewLiveController(service ReportService, recorder Recorder, logger *zap.Logger) *LiveController {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &LiveController{Service: service, Recorder: recorder, Logger: logger}
}

func (h *LiveController) HandleLive(c *websocket.Conn) {
	h.serve(c)
}

// maxLiveRuns caps concurrent backend runs per session. Requests arriving
// while every slot is busy wait in a single pending slot; a newer one replaces it.
const maxLiveRuns = 2

type liveRun struct {
	token      uint64
	generation uint64
	cfg        engine.Configuration
}

func (h *LiveController) serve(conn liveConn) {
	var (
		display  engine.Display[*RunResponse]
		writeMu  sync.Mutex
		wg       sync.WaitGroup
		slotMu   sync.Mutex
		inFlight int
		pending  *liveRun
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer wg.Wait()
	defer cancel()

	write := func(resp LiveResponse) {
		if err := conn.WriteJSON(resp); err != nil {
			h.Logger.Debug("Live report write failed", zap.Error(err))
		}
	}

	execute := func(r liveRun) {
		res, err := h.Service.Run(ctx, r.cfg)

		// accept and write together so sends stay in generation order
		writeMu.Lock()
		defer writeMu.Unlock()
		if err != nil {
			if display.Fail(r.token) {
				write(LiveResponse{Generation: r.generation, Error: err.Error()})
			} else {
				h.Recorder.ObserveStale()
			}
			return
		}
		if !display.Accept(r.token, res) {
			h.Logger.Debug("Dropped stale live result",
				zap.Uint64("generation", r.generation),
				zap.Int("row_count", res.RowCount))
			h.Recorder.ObserveStale()
			return
		}
		write(LiveResponse{Generation: r.generation, Result: res})
	}

	// worker keeps its slot while a pending request is waiting
	worker := func(r liveRun) {
		defer wg.Done()
		for {
			execute(r)
			slotMu.Lock()
			next := pending
			pending = nil
			if next == nil {
				inFlight--
				slotMu.Unlock()
				return
			}
			slotMu.Unlock()
			r = *next
		}
	}

	submit := func(r liveRun) {
		slotMu.Lock()
		defer slotMu.Unlock()
		if inFlight < maxLiveRuns {
			inFlight++
			wg.Add(1)
			go worker(r)
			return
		}
		if pending != nil {
			// superseded before it reached the backend
			h.Recorder.ObserveStale()
		}
		pending = &r
	}

	for {
		var req LiveRequest
		if err := conn.ReadJSON(&req); err != nil {
			h.Logger.Debug("Live report session closed", zap.Error(err))
			return
		}

		token := display.Begin()
		cfg, err := h.Service.Configure(req.Config)
		if err != nil {
			writeMu.Lock()
			if display.Fail(token) {
				write(LiveResponse{Generation: req.Generation, Error: err.Error()})
			}
			writeMu.Unlock()
			continue
		}

		submit(liveRun{token: token, generation: req.Generation, cfg: cfg})
	}
}
