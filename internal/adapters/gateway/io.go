package gateway

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

func (c *Client) writePump(s *session) {
	for {
		select {
		case <-s.ctx.Done():
			c.logger.Debug().Msg("writePump ctx done")
			return
		case data := <-s.send:
			if err := s.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
				c.logger.Error().Err(err).Msg("writePump set deadline")
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Error().Err(err).Msg("writePump write error")
				return
			}
		}
	}
}

func (c *Client) readPump(s *session) {
	defer c.logger.Debug().Msg("readPump closing")

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if s.ctx.Err() == nil {
				c.logger.Error().Err(err).Msg("readPump read error")
			}
			return
		}
		c.handleFrame(s, data)
	}
}

func (c *Client) handleFrame(s *session, data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.logger.Error().Err(err).Msg("bad json")
		return
	}
	if env.S != nil {
		seq := *env.S
		s.seq.Store(&seq)
	}

	switch env.Op {
	case OpDispatch:
		c.dispatcher.Handle(env)
	case OpHello:
		var h Hello
		if err := json.Unmarshal(env.D, &h); err != nil || h.HeartbeatInterval <= 0 {
			c.logger.Error().Err(err).Msg("bad hello payload")
			return
		}
		interval := time.Duration(h.HeartbeatInterval) * time.Millisecond
		s.heartbeat.Do(func() {
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				c.heartbeatLoop(s, interval)
			}()
		})
	case OpHeartbeatAck:
		c.logger.Debug().Msg("heartbeat ack")
	default:
		c.logger.Warn().Int("op", int(env.Op)).Msg("unknown opcode")
	}
}

func (c *Client) heartbeatLoop(s *session, interval time.Duration) {
	ticker := c.clock.Ticker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			f, err := encode(OpHeartbeat, s.seq.Load())
			if err != nil {
				continue
			}
			if err := c.TrySend(f); err != nil {
				c.logger.Warn().Err(err).Msg("heartbeat not sent")
			}
		}
	}
}
