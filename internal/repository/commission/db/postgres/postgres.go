package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"commission-tracker/internal/domain"
	"commission-tracker/internal/repository/commission"

	"github.com/lib/pq"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

const commissionColumns = `
	c.id, c.artist_id, a.name, c.price, c.date_commissioned,
	c.title, c.description, c.date_received, c.nsfw, c.thumbnail_id, c.created_at,
	f.id, f.bucket_key, f.size, f.filename, f.content_type`

const commissionFrom = `
	FROM commissions c
	JOIN files f ON f.id = c.invoice_id
	JOIN entities a ON a.id = c.artist_id`

type CommissionsRepository struct {
	db      *dbpg.DB
	retries retry.Strategy
}

func NewCommissionsRepository(db *dbpg.DB, retries retry.Strategy) *CommissionsRepository {
	return &CommissionsRepository{
		db:      db,
		retries: retries,
	}
}

func (r *CommissionsRepository) Create(ctx context.Context, c *domain.Commission) (*domain.Commission, error) {
	var id int64

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		invoiceID, err := insertFile(ctx, tx, c.Invoice)
		if err != nil {
			return err
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO commissions (
				artist_id, invoice_id, price, date_commissioned,
				title, description, date_received, nsfw
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			c.ArtistID,
			invoiceID,
			c.Price,
			c.DateCommissioned,
			c.Title,
			c.Description,
			c.DateReceived,
			c.NSFW,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert commission: %w", mapPQError(err))
		}

		for _, characterID := range c.CharacterIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO commission_characters (commission_id, character_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				id, characterID,
			); err != nil {
				return fmt.Errorf("failed to link character %d: %w", characterID, mapPQError(err))
			}
		}

		if err := insertImages(ctx, tx, id, c.Images); err != nil {
			return err
		}

		if c.Thumbnail != nil {
			return setThumbnail(ctx, tx, id, *c.Thumbnail)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.FindOne(ctx, id)
}

func (r *CommissionsRepository) Complete(ctx context.Context, id int64, details domain.CompletionDetails) (*domain.Commission, error) {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var thumbnailID sql.NullInt64
		err := tx.QueryRowContext(ctx,
			`SELECT thumbnail_id FROM commissions WHERE id = $1 FOR UPDATE`, id,
		).Scan(&thumbnailID)
		if errors.Is(err, sql.ErrNoRows) {
			return commission.ErrCommissionNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock commission: %w", err)
		}
		if thumbnailID.Valid {
			return commission.ErrAlreadyComplete
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE commissions
			SET title = $1, description = $2, date_received = $3, nsfw = $4
			WHERE id = $5`,
			details.Title, details.Description, details.DateReceived, details.NSFW, id,
		); err != nil {
			return fmt.Errorf("failed to update commission: %w", err)
		}

		if err := insertImages(ctx, tx, id, details.Images); err != nil {
			return err
		}

		return setThumbnail(ctx, tx, id, details.Thumbnail)
	})
	if err != nil {
		return nil, err
	}

	return r.FindOne(ctx, id)
}

func (r *CommissionsRepository) Update(ctx context.Context, id int64, upd domain.CommissionUpdate) (*domain.Commission, error) {
	query := `
		UPDATE commissions
		SET title = COALESCE($1, title),
		    description = COALESCE($2, description),
		    nsfw = COALESCE($3, nsfw)
		WHERE id = $4`

	result, err := r.db.ExecWithRetry(ctx, r.retries, query, upd.Title, upd.Description, upd.NSFW, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update commission: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return nil, commission.ErrCommissionNotFound
	}

	return r.FindOne(ctx, id)
}

// Delete removes the commission with its images, thumbnail and invoice row
// and returns the graph as it was before deletion. The commission row stays
// locked while the graph is read so a concurrent Complete cannot add images
// whose keys would be missed.
func (r *CommissionsRepository) Delete(ctx context.Context, id int64) (*domain.Commission, error) {
	var existing *domain.Commission

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var (
			thumbnailID sql.NullInt64
			invoiceID   int64
		)
		err := tx.QueryRowContext(ctx,
			`SELECT thumbnail_id, invoice_id FROM commissions WHERE id = $1 FOR UPDATE`, id,
		).Scan(&thumbnailID, &invoiceID)
		if errors.Is(err, sql.ErrNoRows) {
			return commission.ErrCommissionNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock commission: %w", err)
		}

		if existing, err = r.FindOne(ctx, id); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM commissions WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete commission: %w", err)
		}

		if thumbnailID.Valid {
			if _, err := tx.ExecContext(ctx, `DELETE FROM images WHERE id = $1`, thumbnailID.Int64); err != nil {
				return fmt.Errorf("failed to delete thumbnail: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, invoiceID); err != nil {
			return fmt.Errorf("failed to delete invoice: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return existing, nil
}

func (r *CommissionsRepository) FindOne(ctx context.Context, id int64) (*domain.Commission, error) {
	query := `SELECT` + commissionColumns + commissionFrom + ` WHERE c.id = $1`

	row, err := r.db.QueryRowWithRetry(ctx, r.retries, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query commission: %w", err)
	}

	c, thumbnailID, err := scanCommission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, commission.ErrCommissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan commission: %w", err)
	}

	if c.Characters, err = r.loadCharacters(ctx, id); err != nil {
		return nil, err
	}
	c.CharacterIDs = make([]int64, 0, len(c.Characters))
	for _, ch := range c.Characters {
		c.CharacterIDs = append(c.CharacterIDs, ch.ID)
	}

	c.Images, err = r.loadImages(ctx, `
		SELECT id, name, placeholder_uri FROM images
		WHERE commission_id = $1
		ORDER BY position, id`, id)
	if err != nil {
		return nil, err
	}

	if thumbnailID.Valid {
		thumbs, err := r.loadImagesByID(ctx, []int64{thumbnailID.Int64})
		if err != nil {
			return nil, err
		}
		if len(thumbs) > 0 {
			c.Thumbnail = &thumbs[0]
		}
	}

	return c, nil
}

// FindMany lists commissions newest first with their artist and thumbnail.
func (r *CommissionsRepository) FindMany(ctx context.Context) ([]domain.Commission, error) {
	query := `SELECT` + commissionColumns + commissionFrom + ` ORDER BY c.date_commissioned DESC, c.id DESC`

	rows, err := r.db.QueryWithRetry(ctx, r.retries, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query commissions: %w", err)
	}
	defer rows.Close()

	var (
		commissions  []domain.Commission
		thumbnailIDs []int64
		thumbnailOf  = make(map[int64]int)
	)
	for rows.Next() {
		c, thumbnailID, err := scanCommission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan commission: %w", err)
		}
		if thumbnailID.Valid {
			thumbnailIDs = append(thumbnailIDs, thumbnailID.Int64)
			thumbnailOf[thumbnailID.Int64] = len(commissions)
		}
		commissions = append(commissions, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating commissions: %w", err)
	}

	if len(thumbnailIDs) == 0 {
		return commissions, nil
	}

	thumbs, err := r.loadImagesByID(ctx, thumbnailIDs)
	if err != nil {
		return nil, err
	}
	for i := range thumbs {
		if idx, ok := thumbnailOf[thumbs[i].ID]; ok {
			thumb := thumbs[i]
			commissions[idx].Thumbnail = &thumb
		}
	}

	return commissions, nil
}

func (r *CommissionsRepository) loadCharacters(ctx context.Context, commissionID int64) ([]domain.Entity, error) {
	query := `
		SELECT e.id, e.name
		FROM commission_characters cc
		JOIN entities e ON e.id = cc.character_id
		WHERE cc.commission_id = $1
		ORDER BY e.id`

	rows, err := r.db.QueryWithRetry(ctx, r.retries, query, commissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query characters: %w", err)
	}
	defer rows.Close()

	var characters []domain.Entity
	for rows.Next() {
		e := domain.Entity{Type: domain.EntityCharacter}
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, fmt.Errorf("failed to scan character: %w", err)
		}
		characters = append(characters, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating characters: %w", err)
	}

	return characters, nil
}

func (r *CommissionsRepository) loadImagesByID(ctx context.Context, ids []int64) ([]domain.Image, error) {
	return r.loadImages(ctx, `
		SELECT id, name, placeholder_uri FROM images
		WHERE id = ANY($1)
		ORDER BY id`, pq.Array(ids))
}

func (r *CommissionsRepository) loadImages(ctx context.Context, query string, arg any) ([]domain.Image, error) {
	rows, err := r.db.QueryWithRetry(ctx, r.retries, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}
	defer rows.Close()

	var (
		images []domain.Image
		ids    []int64
	)
	for rows.Next() {
		var img domain.Image
		if err := rows.Scan(&img.ID, &img.Name, &img.PlaceholderURI); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, img)
		ids = append(ids, img.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating images: %w", err)
	}

	if len(images) == 0 {
		return images, nil
	}

	alternates, err := r.loadAlternates(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range images {
		images[i].Alternates = alternates[images[i].ID]
	}

	return images, nil
}

func (r *CommissionsRepository) loadAlternates(ctx context.Context, imageIDs []int64) (map[int64][]domain.Alternate, error) {
	query := `
		SELECT id, image_id, bucket_key, size, width, height, filename, content_type, user_provided
		FROM alternates
		WHERE image_id = ANY($1)
		ORDER BY id`

	rows, err := r.db.QueryWithRetry(ctx, r.retries, query, pq.Array(imageIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query alternates: %w", err)
	}
	defer rows.Close()

	byImage := make(map[int64][]domain.Alternate)
	for rows.Next() {
		var (
			alt     domain.Alternate
			imageID int64
		)
		err := rows.Scan(
			&alt.ID,
			&imageID,
			&alt.Key,
			&alt.Size,
			&alt.Width,
			&alt.Height,
			&alt.Filename,
			&alt.ContentType,
			&alt.UserProvided,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alternate: %w", err)
		}
		byImage[imageID] = append(byImage[imageID], alt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alternates: %w", err)
	}

	return byImage, nil
}

func (r *CommissionsRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("failed to rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCommission(row rowScanner) (*domain.Commission, sql.NullInt64, error) {
	var (
		c            domain.Commission
		artist       domain.Entity
		title        sql.NullString
		description  sql.NullString
		dateReceived sql.NullTime
		thumbnailID  sql.NullInt64
	)

	err := row.Scan(
		&c.ID,
		&c.ArtistID,
		&artist.Name,
		&c.Price,
		&c.DateCommissioned,
		&title,
		&description,
		&dateReceived,
		&c.NSFW,
		&thumbnailID,
		&c.CreatedAt,
		&c.Invoice.ID,
		&c.Invoice.Key,
		&c.Invoice.Size,
		&c.Invoice.Filename,
		&c.Invoice.ContentType,
	)
	if err != nil {
		return nil, thumbnailID, err
	}

	artist.ID = c.ArtistID
	artist.Type = domain.EntityArtist
	c.Artist = &artist

	if title.Valid {
		c.Title = &title.String
	}
	if description.Valid {
		c.Description = &description.String
	}
	if dateReceived.Valid {
		t := dateReceived.Time
		c.DateReceived = &t
	}

	return &c, thumbnailID, nil
}

func insertFile(ctx context.Context, tx *sql.Tx, f domain.File) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO files (bucket_key, size, filename, content_type)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		f.Key, f.Size, f.Filename, f.ContentType,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert file: %w", err)
	}
	return id, nil
}

func insertImages(ctx context.Context, tx *sql.Tx, commissionID int64, images []domain.Image) error {
	for i, img := range images {
		if _, err := insertImage(ctx, tx, sql.NullInt64{Int64: commissionID, Valid: true}, i, img); err != nil {
			return err
		}
	}
	return nil
}

// setThumbnail stores img as an independent image row and points the
// commission at it.
func setThumbnail(ctx context.Context, tx *sql.Tx, commissionID int64, img domain.Image) error {
	thumbnailID, err := insertImage(ctx, tx, sql.NullInt64{}, 0, img)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE commissions SET thumbnail_id = $1 WHERE id = $2`, thumbnailID, commissionID,
	); err != nil {
		return fmt.Errorf("failed to set thumbnail: %w", err)
	}
	return nil
}

func insertImage(ctx context.Context, tx *sql.Tx, commissionID sql.NullInt64, position int, img domain.Image) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO images (commission_id, position, name, placeholder_uri)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		commissionID, position, img.Name, img.PlaceholderURI,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert image %s: %w", img.Name, err)
	}

	for _, alt := range img.Alternates {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO alternates (
				image_id, bucket_key, size, width, height,
				filename, content_type, user_provided
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			id,
			alt.Key,
			alt.Size,
			alt.Width,
			alt.Height,
			alt.Filename,
			alt.ContentType,
			alt.UserProvided,
		); err != nil {
			return 0, fmt.Errorf("failed to insert alternate for %s: %w", img.Name, err)
		}
	}

	return id, nil
}

func mapPQError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %s", commission.ErrReferenceNotFound, pqErr.Constraint)
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s", commission.ErrDuplicateKey, pqErr.Constraint)
	default:
		return err
	}
}
