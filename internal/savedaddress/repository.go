package savedaddress

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists saved addresses. Every call is scoped to one user.
type Repository interface {
	Insert(ctx context.Context, addr Address) error
	Update(ctx context.Context, addr Address) error
	List(ctx context.Context, userID string) ([]Address, error)
	Delete(ctx context.Context, userID, id string) error
}

// PostgresRepository stores addresses in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert stores a new address.
func (r *PostgresRepository) Insert(ctx context.Context, addr Address) error {
	addrID, err := uuid.Parse(addr.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(addr.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO addresses (id, user_id, line, house_no, landmark, location, pincode, city, state, latitude, longitude, address_type, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		addrID, userID, addr.Line, addr.HouseNo, addr.Landmark, addr.Location, addr.Pincode, addr.City, addr.State,
		addr.Latitude, addr.Longitude, addr.AddressType, addr.CreatedAt.UTC())
	return err
}

// Update replaces the fields of one of the user's addresses. An id that does
// not exist or belongs to someone else yields ErrNotFound.
func (r *PostgresRepository) Update(ctx context.Context, addr Address) error {
	addrID, err := uuid.Parse(addr.ID)
	if err != nil {
		return ErrNotFound
	}
	userID, err := uuid.Parse(addr.UserID)
	if err != nil {
		return ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `UPDATE addresses SET line = $3, house_no = $4, landmark = $5, location = $6, pincode = $7,
            city = $8, state = $9, latitude = $10, longitude = $11, address_type = $12
        WHERE id = $1 AND user_id = $2`,
		addrID, userID, addr.Line, addr.HouseNo, addr.Landmark, addr.Location, addr.Pincode, addr.City, addr.State,
		addr.Latitude, addr.Longitude, addr.AddressType)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the user's addresses, oldest first.
func (r *PostgresRepository) List(ctx context.Context, userID string) ([]Address, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id, user_id, line, house_no, landmark, location, pincode, city, state, latitude, longitude, address_type, created_at
        FROM addresses WHERE user_id = $1 ORDER BY created_at, id`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Address
	for rows.Next() {
		var a Address
		var idVal, ownerID uuid.UUID
		var createdAt time.Time
		if err := rows.Scan(&idVal, &ownerID, &a.Line, &a.HouseNo, &a.Landmark, &a.Location, &a.Pincode, &a.City,
			&a.State, &a.Latitude, &a.Longitude, &a.AddressType, &createdAt); err != nil {
			return nil, err
		}
		a.ID = idVal.String()
		a.UserID = ownerID.String()
		a.CreatedAt = createdAt.UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

// Delete removes one of the user's addresses.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	addrID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM addresses WHERE id = $1 AND user_id = $2`, addrID, uid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
