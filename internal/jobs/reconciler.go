// Package jobs runs the background reconciliation pass: support messages
// synthesized locally after a failed send are retried until the backend
// confirms them.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"financehub/portal/internal/store"
)

type Reconciler struct {
	cron    *cron.Cron
	suporte *store.Suporte
	log     zerolog.Logger
	spec    string
}

func NewReconciler(suporte *store.Suporte, spec string, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		cron:    cron.New(),
		suporte: suporte,
		log:     log.With().Str("job", "reconciler").Logger(),
		spec:    spec,
	}
}

func (r *Reconciler) Start() error {
	if _, err := r.cron.AddFunc(r.spec, r.executar); err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

func (r *Reconciler) Stop() context.CancelFunc {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	go func() {
		select {
		case <-r.cron.Stop().Done():
		case <-ctx.Done():
		}
		cancel()
	}()
	return cancel
}

// executar is one reconciliation pass. Quiet when there is nothing pending.
func (r *Reconciler) executar() {
	pendentes := r.suporte.Pendentes()
	if len(pendentes) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	entregues := r.suporte.ReenviarPendentes(ctx)
	r.log.Info().
		Int("pendentes", len(pendentes)).
		Int("entregues", entregues).
		Msg("passagem de reconciliação")
}
