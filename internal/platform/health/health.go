// Pacote health expõe liveness e readiness checando as dependências registradas.
package health

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// Probe é uma dependência nomeada; Check deve respeitar o contexto.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

func SQLProbe(name string, db *sql.DB) Probe {
	return Probe{Name: name, Check: db.PingContext}
}

func RedisProbe(name string, client *redis.Client) Probe {
	return Probe{Name: name, Check: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}}
}

type Checker struct {
	probes  []Probe
	timeout time.Duration
}

func NewChecker(probes ...Probe) *Checker {
	return &Checker{probes: probes, timeout: 2 * time.Second}
}

// Check devolve o nome da primeira dependência indisponível, na ordem de registro.
func (c *Checker) Check(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	for _, p := range c.probes {
		if err := ctx.Err(); err != nil {
			return p.Name, err
		}
		if err := p.Check(ctx); err != nil {
			return p.Name, err
		}
	}
	return "", nil
}

func (c *Checker) ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if name, err := c.Check(r.Context()); err != nil {
			http.Error(w, name+" unavailable", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

func LiveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
