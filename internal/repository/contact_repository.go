package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/contacts-service/internal/domain"
)

// BirthdayWindowDays is how far ahead upcoming birthdays are looked up.
const BirthdayWindowDays = 7

// ContactRepository encapsulates contact persistence. Every query is scoped
// to the owning user.
type ContactRepository interface {
	List(ctx context.Context, userID int64, limit, offset int) ([]domain.Contact, error)
	Get(ctx context.Context, userID, id int64) (*domain.Contact, error)
	Create(ctx context.Context, contact *domain.Contact) error
	Update(ctx context.Context, contact *domain.Contact) error
	Delete(ctx context.Context, userID, id int64) (*domain.Contact, error)
	Search(ctx context.Context, userID int64, filter domain.ContactSearch) ([]domain.Contact, error)
	Birthdays(ctx context.Context, userID int64, today time.Time) ([]domain.Contact, error)
}

type contactRepository struct {
	db DB
}

// NewContactRepository instantiates repository.
func NewContactRepository(db DB) ContactRepository {
	return &contactRepository{db: db}
}

const contactColumns = `id, first_name, last_name, email, phone, birthday, description, user_id`

func (r *contactRepository) List(ctx context.Context, userID int64, limit, offset int) ([]domain.Contact, error) {
	const query = `SELECT ` + contactColumns + ` FROM contacts WHERE user_id=$1 ORDER BY id LIMIT $2 OFFSET $3`
	return r.fetchMany(ctx, query, userID, limit, offset)
}

func (r *contactRepository) Get(ctx context.Context, userID, id int64) (*domain.Contact, error) {
	const query = `SELECT ` + contactColumns + ` FROM contacts WHERE id=$1 AND user_id=$2`
	return scanContact(r.db.QueryRow(ctx, query, id, userID))
}

func (r *contactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	const query = `
        INSERT INTO contacts (first_name, last_name, email, phone, birthday, description, user_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id`
	err := r.db.QueryRow(ctx, query,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.Phone,
		contact.Birthday,
		contact.Description,
		contact.UserID,
	).Scan(&contact.ID)
	return mapWriteError(err)
}

func (r *contactRepository) Update(ctx context.Context, contact *domain.Contact) error {
	const query = `
        UPDATE contacts SET first_name=$1, last_name=$2, email=$3, phone=$4, birthday=$5, description=$6
        WHERE id=$7 AND user_id=$8`
	cmd, err := r.db.Exec(ctx, query,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.Phone,
		contact.Birthday,
		contact.Description,
		contact.ID,
		contact.UserID,
	)
	if err != nil {
		return mapWriteError(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *contactRepository) Delete(ctx context.Context, userID, id int64) (*domain.Contact, error) {
	const query = `DELETE FROM contacts WHERE id=$1 AND user_id=$2 RETURNING ` + contactColumns
	return scanContact(r.db.QueryRow(ctx, query, id, userID))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *contactRepository) Search(ctx context.Context, userID int64, filter domain.ContactSearch) ([]domain.Contact, error) {
	clauses := []string{"user_id=$1"}
	args := []any{userID}

	add := func(column, term string) {
		term = strings.TrimSpace(term)
		if term == "" {
			return
		}
		args = append(args, "%"+likeEscaper.Replace(term)+"%")
		clauses = append(clauses, fmt.Sprintf(`%s ILIKE $%d ESCAPE '\'`, column, len(args)))
	}
	add("first_name", filter.FirstName)
	add("last_name", filter.LastName)
	add("email", filter.Email)

	query := `SELECT ` + contactColumns + ` FROM contacts WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY id`
	return r.fetchMany(ctx, query, args...)
}

// Birthdays returns contacts whose birthday falls within the next
// BirthdayWindowDays days starting at today, wrapping over the new year.
func (r *contactRepository) Birthdays(ctx context.Context, userID int64, today time.Time) ([]domain.Contact, error) {
	const monthDay = `(EXTRACT(MONTH FROM birthday)::int * 100 + EXTRACT(DAY FROM birthday)::int)`

	start, end := birthdayWindow(today)
	cond := monthDay + ` BETWEEN $2 AND $3`
	if start > end {
		cond = `(` + monthDay + ` >= $2 OR ` + monthDay + ` <= $3)`
	}
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE user_id=$1 AND ` + cond + ` ORDER BY id`
	return r.fetchMany(ctx, query, userID, start, end)
}

// birthdayWindow encodes the first and last day of the window as month*100+day.
func birthdayWindow(today time.Time) (int, int) {
	end := today.AddDate(0, 0, BirthdayWindowDays)
	return int(today.Month())*100 + today.Day(), int(end.Month())*100 + end.Day()
}

func (r *contactRepository) fetchMany(ctx context.Context, query string, args ...any) ([]domain.Contact, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []domain.Contact{}
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *contact)
	}
	return contacts, rows.Err()
}

func scanContact(row pgx.Row) (*domain.Contact, error) {
	var c domain.Contact
	if err := row.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.Phone,
		&c.Birthday,
		&c.Description,
		&c.UserID,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
