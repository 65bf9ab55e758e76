package docstore

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/verdantmart/storefront/internal/errors"
	"github.com/verdantmart/storefront/internal/log"
	"github.com/verdantmart/storefront/internal/otel"
)

// Postgres stores documents as JSONB rows in a single documents table. The
// schema lives in migrations/ and is applied by infra.NewDatabaseClient.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Get(c context.Context, collection, key string) (Document, error) {
	c, span := otel.Tracer.Start(c, "PostgresDocstore Get")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PostgresDocstore Get").
		Str(log.KeyCollection, collection).
		Str(log.KeyDocumentKey, key).
		Logger()

	var raw []byte
	err := p.pool.QueryRow(
		c,
		`SELECT doc FROM documents WHERE collection = $1 AND key = $2`,
		collection,
		key,
	).Scan(&raw)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		err = fmt.Errorf("failed finding document with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, errors.StoreError{Err: err}
	}

	doc := Document{}
	err = json.Unmarshal(raw, &doc)
	if err != nil {
		err = fmt.Errorf("failed unmarshaling document with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, errors.StoreError{Err: err}
	}
	return doc, nil
}

func (p *Postgres) Set(c context.Context, collection, key string, doc Document, merge bool) error {
	c, span := otel.Tracer.Start(c, "PostgresDocstore Set")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PostgresDocstore Set").
		Str(log.KeyCollection, collection).
		Str(log.KeyDocumentKey, key).
		Bool("merge", merge).
		Logger()

	raw, err := json.Marshal(doc)
	if err != nil {
		err = fmt.Errorf("failed marshaling document with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return errors.StoreError{Err: err}
	}

	update := `doc = EXCLUDED.doc`
	if merge {
		update = `doc = documents.doc || EXCLUDED.doc`
	}
	query := fmt.Sprintf(
		`INSERT INTO documents (collection, key, doc) VALUES ($1, $2, $3)
		 ON CONFLICT (collection, key) DO UPDATE SET %s`,
		update,
	)
	_, err = p.pool.Exec(c, query, collection, key, raw)
	if err != nil {
		err = fmt.Errorf("failed writing document with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return errors.StoreError{Err: err}
	}
	return nil
}

func (p *Postgres) Add(c context.Context, collection string, doc Document) (string, error) {
	key := uuid.NewString()
	err := p.Set(c, collection, key, doc, false)
	if err != nil {
		return "", err
	}
	return key, nil
}

func (p *Postgres) Query(
	c context.Context,
	collection string,
	filter Filter,
	order Order,
) ([]Entry, error) {
	c, span := otel.Tracer.Start(c, "PostgresDocstore Query")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PostgresDocstore Query").
		Str(log.KeyCollection, collection).
		Logger()

	query := `SELECT key, doc FROM documents WHERE collection = $1`
	args := []interface{}{collection}
	if filter.Field != "" {
		query += ` AND doc->>$2 = $3`
		args = append(args, filter.Field, fmt.Sprint(filter.Value))
	}
	if order.Field != "" {
		direction := "ASC"
		if order.Desc {
			direction = "DESC"
		}
		query += fmt.Sprintf(` ORDER BY doc->>$%d %s`, len(args)+1, direction)
		args = append(args, order.Field)
	}

	rows, err := p.pool.Query(c, query, args...)
	if err != nil {
		err = fmt.Errorf("failed querying documents with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, errors.StoreError{Err: err}
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var key string
		var raw []byte
		err = rows.Scan(&key, &raw)
		if err != nil {
			err = fmt.Errorf("failed scanning document row with error=%w", err)
			errors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, errors.StoreError{Err: err}
		}
		doc := Document{}
		err = json.Unmarshal(raw, &doc)
		if err != nil {
			err = fmt.Errorf("failed unmarshaling document with error=%w", err)
			errors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, errors.StoreError{Err: err}
		}
		entries = append(entries, Entry{Key: key, Doc: doc})
	}
	if err = rows.Err(); err != nil {
		err = fmt.Errorf("failed iterating document rows with error=%w", err)
		errors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, errors.StoreError{Err: err}
	}
	return entries, nil
}
