package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGStore implements Store using PostgreSQL. Resource tables reference
// users(id) with on delete cascade, so account deletion cleans up owned
// records even without PurgeOwner.
type PGStore struct {
	db *sql.DB
}

var _ Store = (*PGStore)(nil)

// NewPGStore wraps an open database handle.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Notes() NoteStore               { return pgNotes{db: s.db} }
func (s *PGStore) Tasks() TaskStore               { return pgTasks{db: s.db} }
func (s *PGStore) Events() EventStore             { return pgEvents{db: s.db} }
func (s *PGStore) Goals() GoalStore               { return pgGoals{db: s.db} }
func (s *PGStore) Transactions() TransactionStore { return pgTransactions{db: s.db} }

func (s *PGStore) PurgeOwner(ctx context.Context, ownerID string) error {
	for _, table := range []string{"notes", "tasks", "events", "goals", "transactions"} {
		if _, err := s.db.ExecContext(ctx, `delete from `+table+` where owner_id=$1`, ownerID); err != nil {
			return err
		}
	}
	return nil
}

// --- notes ---

type pgNotes struct{ db *sql.DB }

func (s pgNotes) Create(ctx context.Context, n *Note) error {
	tags, err := json.Marshal(n.Tags)
	if err != nil {
		return err
	}
	row := s.db.QueryRowContext(ctx, `
		insert into notes(id, owner_id, title, content, tags, color, pinned)
		values ($1,$2,$3,$4,$5,$6,$7)
		returning created_at, updated_at
	`, n.ID, n.OwnerID, n.Title, n.Content, tags, n.Color, n.Pinned)
	return row.Scan(&n.CreatedAt, &n.UpdatedAt)
}

func (s pgNotes) List(ctx context.Context, scope Scope) ([]*Note, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if scope.All {
		rows, err = s.db.QueryContext(ctx, `
			select n.id, n.owner_id, n.title, n.content, n.tags, n.color, n.pinned,
			       n.created_at, n.updated_at, u.full_name, u.email
			from notes n join users u on u.id = n.owner_id
			order by n.created_at desc
		`)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			select id, owner_id, title, content, tags, color, pinned, created_at, updated_at
			from notes where owner_id=$1
			order by created_at desc
		`, scope.OwnerID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*Note, 0)
	for rows.Next() {
		var (
			n    Note
			tags []byte
		)
		if scope.All {
			var owner Owner
			if err := rows.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &tags, &n.Color,
				&n.Pinned, &n.CreatedAt, &n.UpdatedAt, &owner.FullName, &owner.Email); err != nil {
				return nil, err
			}
			owner.ID = n.OwnerID
			n.Owner = &owner
		} else {
			if err := rows.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &tags, &n.Color,
				&n.Pinned, &n.CreatedAt, &n.UpdatedAt); err != nil {
				return nil, err
			}
		}
		if err := json.Unmarshal(tags, &n.Tags); err != nil {
			return nil, err
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

func (s pgNotes) Find(ctx context.Context, id, ownerID string) (*Note, error) {
	var (
		n    Note
		tags []byte
	)
	err := s.db.QueryRowContext(ctx, `
		select id, owner_id, title, content, tags, color, pinned, created_at, updated_at
		from notes where id=$1 and owner_id=$2
	`, id, ownerID).Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &tags, &n.Color,
		&n.Pinned, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tags, &n.Tags); err != nil {
		return nil, err
	}
	return &n, nil
}

func (s pgNotes) Update(ctx context.Context, n *Note) error {
	tags, err := json.Marshal(n.Tags)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		update notes set title=$3, content=$4, tags=$5, color=$6, pinned=$7, updated_at=now()
		where id=$1 and owner_id=$2
	`, n.ID, n.OwnerID, n.Title, n.Content, tags, n.Color, n.Pinned)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s pgNotes) Delete(ctx context.Context, id, ownerID string) error {
	res, err := s.db.ExecContext(ctx, `delete from notes where id=$1 and owner_id=$2`, id, ownerID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// --- tasks ---

type pgTasks struct{ db *sql.DB }

func (s pgTasks) Create(ctx context.Context, t *Task) error {
	todo, tags, completed, err := marshalTaskJSON(t)
	if err != nil {
		return err
	}
	row := s.db.QueryRowContext(ctx, `
		insert into tasks(id, owner_id, title, description, start_date, due_date,
		                  priority, status, todo, tags, completed)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		returning created_at, updated_at
	`, t.ID, t.OwnerID, t.Title, t.Description, t.StartDate, t.DueDate,
		t.Priority, t.Status, todo, tags, completed)
	return row.Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (s pgTasks) List(ctx context.Context, scope Scope) ([]*Task, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if scope.All {
		rows, err = s.db.QueryContext(ctx, `
			select t.id, t.owner_id, t.title, t.description, t.start_date, t.due_date,
			       t.priority, t.status, t.todo, t.tags, t.completed,
			       t.created_at, t.updated_at, u.full_name, u.email
			from tasks t join users u on u.id = t.owner_id
			order by t.created_at desc
		`)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			select id, owner_id, title, description, start_date, due_date,
			       priority, status, todo, tags, completed, created_at, updated_at
			from tasks where owner_id=$1
			order by created_at desc
		`, scope.OwnerID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*Task, 0)
	for rows.Next() {
		var (
			t                     Task
			start, due            sql.NullTime
			todo, tags, completed []byte
		)
		if scope.All {
			var owner Owner
			if err := rows.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &start, &due,
				&t.Priority, &t.Status, &todo, &tags, &completed,
				&t.CreatedAt, &t.UpdatedAt, &owner.FullName, &owner.Email); err != nil {
				return nil, err
			}
			owner.ID = t.OwnerID
			t.Owner = &owner
		} else {
			if err := rows.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &start, &due,
				&t.Priority, &t.Status, &todo, &tags, &completed,
				&t.CreatedAt, &t.UpdatedAt); err != nil {
				return nil, err
			}
		}
		if err := unmarshalTaskJSON(&t, start, due, todo, tags, completed); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (s pgTasks) Find(ctx context.Context, id, ownerID string) (*Task, error) {
	var (
		t                     Task
		start, due            sql.NullTime
		todo, tags, completed []byte
	)
	err := s.db.QueryRowContext(ctx, `
		select id, owner_id, title, description, start_date, due_date,
		       priority, status, todo, tags, completed, created_at, updated_at
		from tasks where id=$1 and owner_id=$2
	`, id, ownerID).Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &start, &due,
		&t.Priority, &t.Status, &todo, &tags, &completed, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := unmarshalTaskJSON(&t, start, due, todo, tags, completed); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s pgTasks) Update(ctx context.Context, t *Task) error {
	todo, tags, completed, err := marshalTaskJSON(t)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		update tasks set title=$3, description=$4, start_date=$5, due_date=$6,
		       priority=$7, status=$8, todo=$9, tags=$10, completed=$11, updated_at=now()
		where id=$1 and owner_id=$2
	`, t.ID, t.OwnerID, t.Title, t.Description, t.StartDate, t.DueDate,
		t.Priority, t.Status, todo, tags, completed)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s pgTasks) Delete(ctx context.Context, id, ownerID string) error {
	res, err := s.db.ExecContext(ctx, `delete from tasks where id=$1 and owner_id=$2`, id, ownerID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func marshalTaskJSON(t *Task) (todo, tags, completed []byte, err error) {
	if todo, err = json.Marshal(t.Todo); err != nil {
		return
	}
	if tags, err = json.Marshal(t.Tags); err != nil {
		return
	}
	completed, err = json.Marshal(t.Completed)
	return
}

func unmarshalTaskJSON(t *Task, start, due sql.NullTime, todo, tags, completed []byte) error {
	if start.Valid {
		v := start.Time
		t.StartDate = &v
	}
	if due.Valid {
		v := due.Time
		t.DueDate = &v
	}
	if err := json.Unmarshal(todo, &t.Todo); err != nil {
		return err
	}
	if err := json.Unmarshal(tags, &t.Tags); err != nil {
		return err
	}
	return json.Unmarshal(completed, &t.Completed)
}

// --- events ---

type pgEvents struct{ db *sql.DB }

func (s pgEvents) Create(ctx context.Context, e *Event) error {
	row := s.db.QueryRowContext(ctx, `
		insert into events(id, owner_id, title, description, start_at, end_at, reminder, recurring, color)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		returning created_at, updated_at
	`, e.ID, e.OwnerID, e.Title, e.Description, e.StartDateTime, e.EndDateTime,
		e.Reminder, e.Recurring, e.Color)
	return row.Scan(&e.CreatedAt, &e.UpdatedAt)
}

func (s pgEvents) List(ctx context.Context, scope Scope) ([]*Event, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if scope.All {
		rows, err = s.db.QueryContext(ctx, `
			select e.id, e.owner_id, e.title, e.description, e.start_at, e.end_at,
			       e.reminder, e.recurring, e.color, e.created_at, e.updated_at,
			       u.full_name, u.email
			from events e join users u on u.id = e.owner_id
			order by e.start_at asc
		`)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			select id, owner_id, title, description, start_at, end_at,
			       reminder, recurring, color, created_at, updated_at
			from events where owner_id=$1
			order by start_at asc
		`, scope.OwnerID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*Event, 0)
	for rows.Next() {
		var (
			e        Event
			reminder sql.NullTime
		)
		if scope.All {
			var owner Owner
			if err := rows.Scan(&e.ID, &e.OwnerID, &e.Title, &e.Description,
				&e.StartDateTime, &e.EndDateTime, &reminder, &e.Recurring, &e.Color,
				&e.CreatedAt, &e.UpdatedAt, &owner.FullName, &owner.Email); err != nil {
				return nil, err
			}
			owner.ID = e.OwnerID
			e.Owner = &owner
		} else {
			if err := rows.Scan(&e.ID, &e.OwnerID, &e.Title, &e.Description,
				&e.StartDateTime, &e.EndDateTime, &reminder, &e.Recurring, &e.Color,
				&e.CreatedAt, &e.UpdatedAt); err != nil {
				return nil, err
			}
		}
		if reminder.Valid {
			v := reminder.Time
			e.Reminder = &v
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (s pgEvents) Find(ctx context.Context, id, ownerID string) (*Event, error) {
	var (
		e        Event
		reminder sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		select id, owner_id, title, description, start_at, end_at,
		       reminder, recurring, color, created_at, updated_at
		from events where id=$1 and owner_id=$2
	`, id, ownerID).Scan(&e.ID, &e.OwnerID, &e.Title, &e.Description,
		&e.StartDateTime, &e.EndDateTime, &reminder, &e.Recurring, &e.Color,
		&e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if reminder.Valid {
		v := reminder.Time
		e.Reminder = &v
	}
	return &e, nil
}

func (s pgEvents) Update(ctx context.Context, e *Event) error {
	res, err := s.db.ExecContext(ctx, `
		update events set title=$3, description=$4, start_at=$5, end_at=$6,
		       reminder=$7, recurring=$8, color=$9, updated_at=now()
		where id=$1 and owner_id=$2
	`, e.ID, e.OwnerID, e.Title, e.Description, e.StartDateTime, e.EndDateTime,
		e.Reminder, e.Recurring, e.Color)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s pgEvents) Delete(ctx context.Context, id, ownerID string) error {
	res, err := s.db.ExecContext(ctx, `delete from events where id=$1 and owner_id=$2`, id, ownerID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// --- goals ---

type pgGoals struct{ db *sql.DB }

func (s pgGoals) Create(ctx context.Context, g *Goal) error {
	days, err := json.Marshal(g.SelectedDays)
	if err != nil {
		return err
	}
	completed, err := json.Marshal(g.Completed)
	if err != nil {
		return err
	}
	row := s.db.QueryRowContext(ctx, `
		insert into goals(id, owner_id, title, repeat, selected_days, frequency,
		                  notification, notify_time, area, color, completed, pinned)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		returning created_at, updated_at
	`, g.ID, g.OwnerID, g.Title, g.Repeat, days, g.Frequency,
		g.Notification, g.NotifyTime, g.Area, g.Color, completed, g.Pinned)
	return row.Scan(&g.CreatedAt, &g.UpdatedAt)
}

func (s pgGoals) List(ctx context.Context, scope Scope) ([]*Goal, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if scope.All {
		rows, err = s.db.QueryContext(ctx, `
			select g.id, g.owner_id, g.title, g.repeat, g.selected_days, g.frequency,
			       g.notification, g.notify_time, g.area, g.color, g.completed, g.pinned,
			       g.created_at, g.updated_at, u.full_name, u.email
			from goals g join users u on u.id = g.owner_id
			order by g.pinned desc, g.created_at desc
		`)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			select id, owner_id, title, repeat, selected_days, frequency,
			       notification, notify_time, area, color, completed, pinned,
			       created_at, updated_at
			from goals where owner_id=$1
			order by pinned desc, created_at desc
		`, scope.OwnerID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*Goal, 0)
	for rows.Next() {
		var (
			g               Goal
			days, completed []byte
		)
		if scope.All {
			var owner Owner
			if err := rows.Scan(&g.ID, &g.OwnerID, &g.Title, &g.Repeat, &days, &g.Frequency,
				&g.Notification, &g.NotifyTime, &g.Area, &g.Color, &completed, &g.Pinned,
				&g.CreatedAt, &g.UpdatedAt, &owner.FullName, &owner.Email); err != nil {
				return nil, err
			}
			owner.ID = g.OwnerID
			g.Owner = &owner
		} else {
			if err := rows.Scan(&g.ID, &g.OwnerID, &g.Title, &g.Repeat, &days, &g.Frequency,
				&g.Notification, &g.NotifyTime, &g.Area, &g.Color, &completed, &g.Pinned,
				&g.CreatedAt, &g.UpdatedAt); err != nil {
				return nil, err
			}
		}
		if err := json.Unmarshal(days, &g.SelectedDays); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(completed, &g.Completed); err != nil {
			return nil, err
		}
		out = append(out, &g)
	}
	return out, rows.Err()
}

func (s pgGoals) Find(ctx context.Context, id, ownerID string) (*Goal, error) {
	var (
		g               Goal
		days, completed []byte
	)
	err := s.db.QueryRowContext(ctx, `
		select id, owner_id, title, repeat, selected_days, frequency,
		       notification, notify_time, area, color, completed, pinned,
		       created_at, updated_at
		from goals where id=$1 and owner_id=$2
	`, id, ownerID).Scan(&g.ID, &g.OwnerID, &g.Title, &g.Repeat, &days, &g.Frequency,
		&g.Notification, &g.NotifyTime, &g.Area, &g.Color, &completed, &g.Pinned,
		&g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(days, &g.SelectedDays); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(completed, &g.Completed); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s pgGoals) Update(ctx context.Context, g *Goal) error {
	days, err := json.Marshal(g.SelectedDays)
	if err != nil {
		return err
	}
	completed, err := json.Marshal(g.Completed)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		update goals set title=$3, repeat=$4, selected_days=$5, frequency=$6,
		       notification=$7, notify_time=$8, area=$9, color=$10, completed=$11,
		       pinned=$12, updated_at=now()
		where id=$1 and owner_id=$2
	`, g.ID, g.OwnerID, g.Title, g.Repeat, days, g.Frequency,
		g.Notification, g.NotifyTime, g.Area, g.Color, completed, g.Pinned)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s pgGoals) Delete(ctx context.Context, id, ownerID string) error {
	res, err := s.db.ExecContext(ctx, `delete from goals where id=$1 and owner_id=$2`, id, ownerID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// --- transactions ---

type pgTransactions struct{ db *sql.DB }

func (s pgTransactions) Create(ctx context.Context, t *Transaction) error {
	row := s.db.QueryRowContext(ctx, `
		insert into transactions(id, owner_id, name, amount, type, icon, date)
		values ($1,$2,$3,$4,$5,$6,$7)
		returning created_at, updated_at
	`, t.ID, t.OwnerID, t.Name, t.Amount, t.Type, t.Icon, t.Date)
	return row.Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (s pgTransactions) List(ctx context.Context, scope Scope) ([]*Transaction, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if scope.All {
		rows, err = s.db.QueryContext(ctx, `
			select t.id, t.owner_id, t.name, t.amount, t.type, t.icon, t.date,
			       t.created_at, t.updated_at, u.full_name, u.email
			from transactions t join users u on u.id = t.owner_id
			order by t.date desc
		`)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			select id, owner_id, name, amount, type, icon, date, created_at, updated_at
			from transactions where owner_id=$1
			order by date desc
		`, scope.OwnerID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*Transaction, 0)
	for rows.Next() {
		var t Transaction
		if scope.All {
			var owner Owner
			if err := rows.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Amount, &t.Type, &t.Icon,
				&t.Date, &t.CreatedAt, &t.UpdatedAt, &owner.FullName, &owner.Email); err != nil {
				return nil, err
			}
			owner.ID = t.OwnerID
			t.Owner = &owner
		} else {
			if err := rows.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Amount, &t.Type, &t.Icon,
				&t.Date, &t.CreatedAt, &t.UpdatedAt); err != nil {
				return nil, err
			}
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (s pgTransactions) Find(ctx context.Context, id, ownerID string) (*Transaction, error) {
	var t Transaction
	err := s.db.QueryRowContext(ctx, `
		select id, owner_id, name, amount, type, icon, date, created_at, updated_at
		from transactions where id=$1 and owner_id=$2
	`, id, ownerID).Scan(&t.ID, &t.OwnerID, &t.Name, &t.Amount, &t.Type, &t.Icon,
		&t.Date, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s pgTransactions) Update(ctx context.Context, t *Transaction) error {
	res, err := s.db.ExecContext(ctx, `
		update transactions set name=$3, amount=$4, type=$5, icon=$6, date=$7, updated_at=now()
		where id=$1 and owner_id=$2
	`, t.ID, t.OwnerID, t.Name, t.Amount, t.Type, t.Icon, t.Date)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s pgTransactions) Delete(ctx context.Context, id, ownerID string) error {
	res, err := s.db.ExecContext(ctx, `delete from transactions where id=$1 and owner_id=$2`, id, ownerID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
