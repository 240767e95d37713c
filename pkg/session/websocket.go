package session

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/loomkit/loom/pkg/bridge"
)

// ReadLoop continuously reads frames off the connection, decodes them, and
// either queues an event or handles a control/ack message. Grounded on the
// teacher's ReadLoop in pkg/server/websocket.go; FramePatch becomes
// FrameBatch and DOM patches become bridge ops, but the frame-type switch
// and the read-deadline-per-message pattern are unchanged.
func (s *Session) ReadLoop() {
	defer s.Close()

	for {
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
				s.metrics.RecordTransportError("read")
			}
			return
		}

		s.UpdateLastActive()
		s.bytesRecv.Add(uint64(len(msg)))

		frame, err := bridge.DecodeFrame(msg)
		if err != nil {
			s.logger.Error("frame decode error", "error", err)
			s.metrics.RecordTransportError("decode")
			continue
		}

		switch frame.Type {
		case bridge.FrameEvent:
			s.handleEventFrame(frame.Payload)
		case bridge.FrameControl:
			s.handleControlFrame(frame.Payload)
		case bridge.FrameAck:
			s.handleAckFrame(frame.Payload)
		default:
			s.logger.Warn("unknown frame type", "type", frame.Type)
		}
	}
}

func (s *Session) handleEventFrame(payload []byte) {
	ev, err := bridge.DecodeEvent(payload)
	if err != nil {
		s.logger.Error("event decode error", "error", err)
		s.sendError(bridge.ErrInvalidEvent, "invalid event format", false)
		return
	}
	if err := s.QueueEvent(ev); err != nil {
		s.sendError(bridge.ErrRateLimited, "event queue full", false)
	}
}

func (s *Session) handleControlFrame(payload []byte) {
	ct, data, err := bridge.DecodeControl(payload)
	if err != nil {
		s.logger.Error("control decode error", "error", err)
		return
	}

	switch ct {
	case bridge.ControlPing:
		if pp, ok := data.(*bridge.PingPong); ok {
			s.sendPong(pp.Timestamp)
		}
	case bridge.ControlPong:
		s.logger.Debug("received pong")
	case bridge.ControlResyncRequest:
		if rr, ok := data.(*bridge.ResyncRequest); ok {
			s.handleResyncRequest(rr.LastSeq)
		}
	case bridge.ControlClose:
		if cm, ok := data.(*bridge.CloseMessage); ok {
			s.logger.Info("peer closing", "reason", cm.Reason, "message", cm.Message)
		}
		s.Close()
	}
}

func (s *Session) handleAckFrame(payload []byte) {
	ack, err := bridge.DecodeAck(payload)
	if err != nil {
		s.logger.Error("ack decode error", "error", err)
		return
	}
	s.ackSeq.Store(ack.LastSeq)
	s.history.GarbageCollect(ack.LastSeq)
}

// handleResyncRequest replays the batches the peer missed from its ring
// buffer of recently sent batches, or closes the session if the gap has
// already fallen out of the window — there is no whole-tree-reload
// fallback on this bridge (see resync.go).
func (s *Session) handleResyncRequest(lastSeq uint64) {
	batches := s.history.Since(lastSeq)
	if batches == nil {
		s.logger.Warn("resync requested outside replay window", "last_seq", lastSeq)
		s.SendClose(bridge.CloseError, "resync window exceeded")
		return
	}
	s.sendResync(lastSeq, batches)
	s.metrics.RecordResync()
}

func (s *Session) sendResync(fromSeq uint64, batches []bridge.Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() || s.conn == nil {
		return
	}

	ct, rr := bridge.NewResyncBatches(fromSeq, batches)
	payload := bridge.EncodeControl(ct, rr)
	frame := bridge.NewFrame(bridge.FrameControl, payload)

	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.BinaryMessage, frame.Encode()); err != nil {
		s.logger.Error("resync write error", "error", err)
	}
}

func (s *Session) sendPong(timestamp uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return
	}
	ct, pp := bridge.NewPong(timestamp)
	payload := bridge.EncodeControl(ct, pp)
	frame := bridge.NewFrame(bridge.FrameControl, payload)

	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.BinaryMessage, frame.Encode()); err != nil {
		s.logger.Error("pong write error", "error", err)
	}
}

func (s *Session) sendPing() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return ErrSessionClosed
	}
	ct, pp := bridge.NewPing(uint64(time.Now().UnixMilli()))
	payload := bridge.EncodeControl(ct, pp)
	frame := bridge.NewFrame(bridge.FrameControl, payload)

	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	return s.conn.WriteMessage(websocket.BinaryMessage, frame.Encode())
}

func (s *Session) sendError(code bridge.ErrorCode, message string, fatal bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() || s.conn == nil {
		return
	}
	var em *bridge.ErrorMessage
	if fatal {
		em = bridge.NewFatalError(code, message)
	} else {
		em = bridge.NewError(code, message)
	}
	payload := bridge.EncodeErrorMessage(em)
	frame := bridge.NewFrame(bridge.FrameError, payload)

	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	s.conn.WriteMessage(websocket.BinaryMessage, frame.Encode())
}

// SendClose sends a close control message to the peer.
func (s *Session) SendClose(reason bridge.CloseReason, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() || s.conn == nil {
		return
	}
	ct, cm := bridge.NewClose(reason, message)
	payload := bridge.EncodeControl(ct, cm)
	frame := bridge.NewFrame(bridge.FrameControl, payload)

	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	s.conn.WriteMessage(websocket.BinaryMessage, frame.Encode())
}

// BeginBatch implements commit.Sender. There is nothing to negotiate before
// a batch on this transport (no server-side staging buffer), so it only
// reports whether the connection is currently usable.
func (s *Session) BeginBatch() error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	if s.conn == nil {
		return ErrNoConnection
	}
	return nil
}

// CommitBatch implements commit.Sender: it encodes ops as a sequenced batch,
// writes it as a FrameBatch, and records it in the resync history on
// success. Acceptance here means "delivered to the transport" — there is no
// synchronous native-side acknowledgment of a batch's correctness, matching
// the prior sendPatchesWithURL, which also only reports write success.
func (s *Session) CommitBatch(ops []bridge.Op) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return false, ErrSessionClosed
	}
	if s.conn == nil {
		return false, ErrNoConnection
	}

	seq := s.sendSeq.Add(1)
	batch := &bridge.Batch{Seq: seq, Ops: ops}
	payload := bridge.EncodeBatch(batch)
	frame := bridge.NewFrame(bridge.FrameBatch, payload)
	frameData := frame.Encode()

	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.BinaryMessage, frameData); err != nil {
		return false, err
	}

	s.history.Add(*batch)
	s.bytesSent.Add(uint64(len(frameData)))
	s.metrics.RecordBatch(len(ops))

	return true, nil
}

// WriteLoop sends periodic heartbeat pings until the session closes.
func (s *Session) WriteLoop() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.sendPing(); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

// EventLoop processes queued events, dispatched callbacks, and render
// signals on the session's single cooperative render thread.
func (s *Session) EventLoop() {
	for {
		select {
		case ev := <-s.events:
			s.handleEvent(ev)
		case fn := <-s.dispatchCh:
			s.executeDispatch(fn)
		case <-s.renderCh:
			s.drainRenders()
		case <-s.done:
			return
		}
	}
}

// Start launches the session's three goroutines. Call after Mount.
func (s *Session) Start() {
	go s.ReadLoop()
	go s.WriteLoop()
	go s.EventLoop()
}
