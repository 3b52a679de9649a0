package voting

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/marcelojr/painel-eleicoes/internal/app/access"
	"github.com/marcelojr/painel-eleicoes/internal/domain"
)

type fakeClock struct {
	now time.Time
}

func (f fakeClock) Agora() time.Time {
	return f.now
}

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (s *seqIDs) New() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("ID%03d", s.n)
}

// memElections guarda eleições em memória preservando a ordem de criação.
type memElections struct {
	mu      sync.Mutex
	ids     *seqIDs
	clock   domain.Clock
	byID    map[domain.ElectionID]domain.Election
	order   []domain.ElectionID
	extra   []domain.Election
	failErr error
}

func newMemElections(ids *seqIDs, clock domain.Clock) *memElections {
	return &memElections{ids: ids, clock: clock, byID: map[domain.ElectionID]domain.Election{}}
}

func (m *memElections) Create(_ context.Context, e domain.Election) (domain.ElectionID, error) {
	if m.failErr != nil {
		return "", m.failErr
	}
	if err := e.CheckRequired(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = domain.ElectionID("E" + m.ids.New())
	e.CreatedAt = m.clock.Agora()
	e.UpdatedAt = e.CreatedAt
	if e.Status == "" {
		e.Status = domain.StatusActive
	}
	e.TotalVotes = 0
	e.Candidates = append([]domain.Candidate(nil), e.Candidates...)
	m.byID[e.ID] = e
	m.order = append(m.order, e.ID)
	return e.ID, nil
}

func (m *memElections) List(context.Context) ([]domain.Election, error) {
	if m.failErr != nil {
		return nil, m.failErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Election, 0, len(m.order)+len(m.extra))
	for i := len(m.order) - 1; i >= 0; i-- {
		out = append(out, m.copyOf(m.order[i]))
	}
	return append(out, m.extra...), nil
}

func (m *memElections) FindByID(_ context.Context, id domain.ElectionID) (domain.Election, error) {
	if m.failErr != nil {
		return domain.Election{}, m.failErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return domain.Election{}, fmt.Errorf("%w: eleicao %s", domain.ErrNotFound, id)
	}
	return m.copyOf(id), nil
}

func (m *memElections) Update(_ context.Context, id domain.ElectionID, patch domain.ElectionPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("%w: eleicao %s", domain.ErrNotFound, id)
	}
	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.TotalVoters != nil {
		e.TotalVoters = *patch.TotalVoters
	}
	if patch.Status != nil {
		e.Status = *patch.Status
	}
	if patch.EndDate != nil {
		e.EndDate = *patch.EndDate
	}
	if patch.Candidates != nil {
		e.Candidates = domain.CandidatesFromInput(*patch.Candidates)
	}
	e.UpdatedAt = m.clock.Agora()
	m.byID[id] = e
	return nil
}

func (m *memElections) Delete(_ context.Context, id domain.ElectionID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return fmt.Errorf("%w: eleicao %s", domain.ErrNotFound, id)
	}
	delete(m.byID, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memElections) ListActive(ctx context.Context) ([]domain.Election, error) {
	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Election, 0, len(all))
	for _, e := range all {
		if e.Status == domain.StatusActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memElections) copyOf(id domain.ElectionID) domain.Election {
	e := m.byID[id]
	e.Candidates = append([]domain.Candidate(nil), e.Candidates...)
	return e
}

// incrementar aplica o voto com as mesmas regras do repositório real.
func (m *memElections) incrementar(v domain.Vote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byID[v.ElectionID]
	if !ok {
		return fmt.Errorf("%w: eleicao %s", domain.ErrNotFound, v.ElectionID)
	}
	if e.Status != domain.StatusActive {
		return fmt.Errorf("%w: eleicao %s", domain.ErrInvalidState, v.ElectionID)
	}
	for i := range e.Candidates {
		if e.Candidates[i].ID == v.CandidateID {
			e.Candidates[i].Votes++
			e.TotalVotes++
			m.byID[e.ID] = e
			return nil
		}
	}
	return fmt.Errorf("%w: candidato %d", domain.ErrNotFound, v.CandidateID)
}

type memVotes struct {
	mu        sync.Mutex
	elections *memElections
	ids       *seqIDs
	clock     domain.Clock
	lista     []domain.Vote
}

func (m *memVotes) Cast(_ context.Context, v domain.Vote) (domain.Vote, error) {
	if v.ID == "" {
		v.ID = domain.VoteID("V" + m.ids.New())
	}
	if v.Timestamp.IsZero() {
		v.Timestamp = m.clock.Agora()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existente := range m.lista {
		if existente.ID == v.ID {
			return existente, nil
		}
	}
	if err := m.elections.incrementar(v); err != nil {
		return domain.Vote{}, err
	}
	m.lista = append(m.lista, v)
	return v, nil
}

func (m *memVotes) ListByElection(_ context.Context, id domain.ElectionID) ([]domain.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Vote
	for _, v := range m.lista {
		if v.ElectionID == id {
			out = append(out, v)
		}
	}
	sortDesc(out)
	return out, nil
}

func (m *memVotes) ListRecent(_ context.Context, limit int) ([]domain.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 10
	}
	out := append([]domain.Vote(nil), m.lista...)
	sortDesc(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memVotes) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lista)
}

func sortDesc(votes []domain.Vote) {
	sort.SliceStable(votes, func(i, j int) bool {
		return votes[i].Timestamp.After(votes[j].Timestamp)
	})
}

type memFila struct {
	mu      sync.Mutex
	votos   []domain.Vote
	failErr error
}

func (f *memFila) PublicarVoto(_ context.Context, v domain.Vote) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.votos = append(f.votos, v)
	return nil
}

func (f *memFila) ConsumirVotos(ctx context.Context, _ func(context.Context, domain.Vote) error) error {
	<-ctx.Done()
	return ctx.Err()
}

func (f *memFila) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.votos)
}

// chanNotificador entrega ao assinante tudo que for publicado.
type chanNotificador struct {
	mu         sync.Mutex
	publicadas []domain.Change
	ativo      bool
	ch         chan domain.Change
	assinando  chan struct{}
}

func newChanNotificador() *chanNotificador {
	return &chanNotificador{ch: make(chan domain.Change, 16), assinando: make(chan struct{})}
}

func (n *chanNotificador) Publicar(_ context.Context, c domain.Change) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.publicadas = append(n.publicadas, c)
	if n.ativo {
		select {
		case n.ch <- c:
		default:
		}
	}
	return nil
}

func (n *chanNotificador) Assinar(ctx context.Context, handler func(context.Context, domain.Change) error) error {
	n.mu.Lock()
	n.ativo = true
	n.mu.Unlock()
	close(n.assinando)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c := <-n.ch:
			if err := handler(ctx, c); err != nil {
				return err
			}
		}
	}
}

func (n *chanNotificador) alteracoes() []domain.Change {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Change(nil), n.publicadas...)
}

type serviceDeps struct {
	baseTime    time.Time
	clock       fakeClock
	ids         *seqIDs
	elections   *memElections
	votes       *memVotes
	fila        *memFila
	notificador *chanNotificador
	gate        *access.Gate
}

func newServiceDeps() *serviceDeps {
	base := time.Date(2025, 9, 10, 15, 0, 0, 0, time.UTC)
	clk := fakeClock{now: base}
	gen := &seqIDs{}
	elections := newMemElections(gen, clk)
	return &serviceDeps{
		baseTime:    base,
		clock:       clk,
		ids:         gen,
		elections:   elections,
		votes:       &memVotes{elections: elections, ids: gen, clock: clk},
		fila:        &memFila{},
		notificador: newChanNotificador(),
		gate:        access.NewGate(nil, clk),
	}
}

// service monta o serviço síncrono; use asyncService para o modo com fila.
func (d *serviceDeps) service() *Service {
	return NewService(d.elections, d.votes, d.gate, nil, d.notificador, d.clock, d.ids, 5)
}

func (d *serviceDeps) asyncService() *Service {
	return NewService(d.elections, d.votes, d.gate, d.fila, d.notificador, d.clock, d.ids, 5)
}

func (d *serviceDeps) adminCtx() context.Context {
	return access.WithSession(context.Background(), access.Session{
		ID:        "sessao-1",
		Email:     "admin@voting.com",
		Role:      access.RoleAdmin,
		ExpiresAt: d.baseTime.Add(time.Hour),
	})
}

func newGateAt(clk fakeClock) *access.Gate {
	return access.NewGate(nil, clk)
}
