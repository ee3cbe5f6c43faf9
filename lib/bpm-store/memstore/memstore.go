package memstore

import (
	bpmstore "bpm-backend/lib/bpm-store"
	"bpm-backend/lib/utils/clock"
	dbmodels "bpm-backend/models/db"
	"maps"
	"sync"
	"time"
)

// DB хранилище в памяти с теми же контрактами, что и хранилища на gorm.
// Транзакция работает над копией состояния и подменяет его при успехе.
type DB struct {
	mu     sync.Mutex
	st     *state
	faults map[string]error
}

func New() *DB {
	return &DB{
		st:     newState(),
		faults: map[string]error{},
	}
}

var _ bpmstore.Provider = (*DB)(nil)

func (d *DB) Stores() bpmstore.Stores {
	return newStores(&session{db: d})
}

func (d *DB) Transaction(fn func(tx bpmstore.Stores) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	clone := d.st.clone()
	err := fn(newStores(&session{db: d, st: clone}))
	if err != nil {
		return err
	}
	d.st = clone
	return nil
}

// InjectFault следующая операция op вернет err, используется в тестах
func (d *DB) InjectFault(op string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faults[op] = err
}

const (
	OpActionCreate     = "actions.create"
	OpAssignmentCreate = "tasks.create"
	OpTaskTransition   = "tasks.transition"
	OpTaskSkipPending  = "tasks.skip_pending"
	OpInstanceComplete = "instances.complete"
	OpInstanceLock     = "instances.lock"
	OpTemplateAddTasks = "templates.add_tasks"
)

type session struct {
	db *DB
	st *state // nil вне транзакции
}

func (s *session) do(op string, fn func(st *state) error) error {
	if s.st != nil {
		if err := s.db.takeFault(op); err != nil {
			return err
		}
		return fn(s.st)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.takeFault(op); err != nil {
		return err
	}
	return fn(s.db.st)
}

func (d *DB) takeFault(op string) error {
	if op == "" {
		return nil
	}
	err, ok := d.faults[op]
	if !ok {
		return nil
	}
	delete(d.faults, op)
	return err
}

func newStores(s *session) bpmstore.Stores {
	return bpmstore.Stores{
		Directory: directoryStore{s: s},
		Templates: templateStore{s: s},
		Instances: instanceStore{s: s},
		Tasks:     taskStore{s: s},
		Actions:   actionStore{s: s},
		PushData:  pushStore{s: s},
	}
}

type state struct {
	seq                 int64
	users               map[string]dbmodels.User
	userPositions       map[string][]string
	departments         map[string]dbmodels.Department
	positions           map[string]dbmodels.JobPosition
	templates           map[string]dbmodels.ProcessTemplate
	templateDepartments map[string][]string
	taskTemplates       map[string]dbmodels.ProcessTaskTemplate
	instances           map[string]dbmodels.ProcessInstance
	tasks               map[string]dbmodels.ProcessTaskAssignment
	actions             []actionRow
	pushData            []dbmodels.PushData
}

type actionRow struct {
	seq int64
	rec dbmodels.TaskAction
}

func newState() *state {
	return &state{
		users:               map[string]dbmodels.User{},
		userPositions:       map[string][]string{},
		departments:         map[string]dbmodels.Department{},
		positions:           map[string]dbmodels.JobPosition{},
		templates:           map[string]dbmodels.ProcessTemplate{},
		templateDepartments: map[string][]string{},
		taskTemplates:       map[string]dbmodels.ProcessTaskTemplate{},
		instances:           map[string]dbmodels.ProcessInstance{},
		tasks:               map[string]dbmodels.ProcessTaskAssignment{},
	}
}

// clone строки не изменяются на месте, поэтому достаточно копии карт
func (st *state) clone() *state {
	return &state{
		seq:                 st.seq,
		users:               maps.Clone(st.users),
		userPositions:       maps.Clone(st.userPositions),
		departments:         maps.Clone(st.departments),
		positions:           maps.Clone(st.positions),
		templates:           maps.Clone(st.templates),
		templateDepartments: maps.Clone(st.templateDepartments),
		taskTemplates:       maps.Clone(st.taskTemplates),
		instances:           maps.Clone(st.instances),
		tasks:               maps.Clone(st.tasks),
		actions:             append([]actionRow(nil), st.actions...),
		pushData:            append([]dbmodels.PushData(nil), st.pushData...),
	}
}

func (st *state) nextSeq() int64 {
	st.seq++
	return st.seq
}

func touch(b *dbmodels.BaseModel) {
	b.InitID()
	now := clock.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func strPtr(s string) *string {
	return &s
}
