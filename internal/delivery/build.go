package delivery

import (
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/eventform/internal/config"
)

// FromConfig assembles the configured targets.  One target is returned
// instrumented as is; several are wrapped in a Fanout.  db is only needed
// when the store target is enabled.
func FromConfig(cfg config.Delivery, db *sqlx.DB, log *zap.SugaredLogger) (Deliverer, error) {
	if log == nil {
		log = zap.S()
	}
	client := &http.Client{Timeout: cfg.Timeout}
	retry := RetryPolicy{
		MaxTries:        cfg.Retry.MaxTries,
		InitialInterval: cfg.Retry.InitialInterval,
		MaxInterval:     cfg.Retry.MaxInterval,
	}

	targets := cfg.Targets
	if len(targets) == 0 {
		targets = []string{"log"}
	}

	var out []Deliverer
	for _, t := range targets {
		var d Deliverer
		switch t {
		case "log":
			d = NewLog(log)
		case "relay":
			if cfg.Relay.Endpoint == "" {
				return nil, fmt.Errorf("relay target: endpoint not configured")
			}
			d = NewRelay(cfg.Relay.Endpoint, cfg.Relay.Token, client, retry, log)
		case "slack":
			d = NewSlack(client, retry, log)
		case "store":
			if db == nil {
				return nil, fmt.Errorf("store target: database not open")
			}
			s, err := NewStore(db, cfg.Store.Table)
			if err != nil {
				return nil, err
			}
			d = s
		default:
			return nil, fmt.Errorf("unknown delivery target %q", t)
		}
		out = append(out, Instrument(t, d))
		log.Infow("delivery target enabled", "target", t)
	}

	if len(out) == 1 {
		return out[0], nil
	}
	return NewFanout(out...), nil
}
