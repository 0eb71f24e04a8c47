package sqlstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"profile-directory/core/backend"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type documents struct {
	s *Store
}

func (d *documents) List(ctx context.Context, databaseID, collectionID string, queries ...backend.Query) (*backend.DocumentList, error) {
	for _, q := range queries {
		if q.Method != "equal" {
			return nil, backend.NewError(http.StatusBadRequest, backend.TypeInvalidQuery,
				fmt.Sprintf("unsupported query method %q", q.Method))
		}
	}

	var rows []documentRow
	if err := d.s.db.WithContext(ctx).
		Where("database_id = ? AND collection_id = ?", databaseID, collectionID).
		Order("seq").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("sqlstore: list documents: %w", err)
	}

	list := &backend.DocumentList{Documents: []json.RawMessage{}}
	for _, row := range rows {
		fields, err := decodeFields(row.Data)
		if err != nil {
			d.s.logger.Warn("Skipping unreadable document", zap.String("id", row.DocumentID), zap.Error(err))
			continue
		}
		if !matchesAll(fields, queries) {
			continue
		}
		doc, err := render(row, fields)
		if err != nil {
			return nil, err
		}
		list.Documents = append(list.Documents, doc)
	}
	list.Total = len(list.Documents)
	return list, nil
}

func (d *documents) Get(ctx context.Context, databaseID, collectionID, documentID string) (json.RawMessage, error) {
	row, err := d.find(d.s.db.WithContext(ctx), databaseID, collectionID, documentID)
	if err != nil {
		return nil, err
	}
	fields, err := decodeFields(row.Data)
	if err != nil {
		return nil, err
	}
	return render(*row, fields)
}

func (d *documents) Create(ctx context.Context, databaseID, collectionID, documentID string, data any) (json.RawMessage, error) {
	fields, err := toFields(data)
	if err != nil {
		return nil, err
	}
	if documentID == "" {
		documentID = backend.NewID()
	}

	d.s.writeMu.Lock()
	defer d.s.writeMu.Unlock()

	var row documentRow
	err = d.s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&documentRow{}).
			Where("database_id = ? AND collection_id = ? AND document_id = ?", databaseID, collectionID, documentID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("sqlstore: check document: %w", err)
		}
		if count > 0 {
			return backend.NewError(http.StatusConflict, backend.TypeDocumentExists,
				fmt.Sprintf("document %s already exists", documentID))
		}

		encoded, err := json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("sqlstore: encode document: %w", err)
		}
		row = documentRow{
			DocumentID:   documentID,
			DatabaseID:   databaseID,
			CollectionID: collectionID,
			Data:         string(encoded),
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("sqlstore: create document: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return d.publish(row, fields, "create")
}

func (d *documents) Update(ctx context.Context, databaseID, collectionID, documentID string, data any) (json.RawMessage, error) {
	changes, err := toFields(data)
	if err != nil {
		return nil, err
	}

	d.s.writeMu.Lock()
	defer d.s.writeMu.Unlock()

	var (
		row    *documentRow
		fields map[string]any
	)
	err = d.s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		row, err = d.find(tx, databaseID, collectionID, documentID)
		if err != nil {
			return err
		}
		fields, err = decodeFields(row.Data)
		if err != nil {
			return err
		}
		for k, v := range changes {
			fields[k] = v
		}

		encoded, err := json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("sqlstore: encode document: %w", err)
		}
		row.Data = string(encoded)
		row.UpdatedAt = time.Now()
		if err := tx.Model(row).Updates(map[string]any{"data": row.Data, "updated_at": row.UpdatedAt}).Error; err != nil {
			return fmt.Errorf("sqlstore: update document: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return d.publish(*row, fields, "update")
}

func (d *documents) Delete(ctx context.Context, databaseID, collectionID, documentID string) error {
	d.s.writeMu.Lock()
	defer d.s.writeMu.Unlock()

	db := d.s.db.WithContext(ctx)
	row, err := d.find(db, databaseID, collectionID, documentID)
	if err != nil {
		return err
	}
	fields, err := decodeFields(row.Data)
	if err != nil {
		return err
	}
	if err := db.Delete(&documentRow{}, row.Seq).Error; err != nil {
		return fmt.Errorf("sqlstore: delete document: %w", err)
	}

	_, err = d.publish(*row, fields, "delete")
	return err
}

func (d *documents) find(db *gorm.DB, databaseID, collectionID, documentID string) (*documentRow, error) {
	var row documentRow
	err := db.Where("database_id = ? AND collection_id = ? AND document_id = ?", databaseID, collectionID, documentID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, backend.NewError(http.StatusNotFound, backend.TypeDocumentNotFound,
			fmt.Sprintf("document %s not found", documentID))
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: get document: %w", err)
	}
	return &row, nil
}

// publish renders the document and emits the change event for it.
// It must run under writeMu.
func (d *documents) publish(row documentRow, fields map[string]any, action string) (json.RawMessage, error) {
	doc, err := render(row, fields)
	if err != nil {
		return nil, err
	}

	collection := backend.DocumentsChannel(row.DatabaseID, row.CollectionID)
	timestamp, _ := json.Marshal(time.Now().UTC().Format(time.RFC3339Nano))
	d.s.broker.Publish(backend.Event{
		Events:    []string{fmt.Sprintf("%s.%s.%s", collection, row.DocumentID, action)},
		Channels:  []string{"documents", collection, collection + "." + row.DocumentID},
		Timestamp: timestamp,
		Payload:   doc,
	})

	d.s.logger.Debug("Document changed",
		zap.String("collection", row.CollectionID),
		zap.String("id", row.DocumentID),
		zap.String("action", action))
	return doc, nil
}

// toFields converts caller data into a JSON object, dropping system attributes.
func toFields(data any) (map[string]any, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, backend.NewError(http.StatusBadRequest, "document_invalid_structure", err.Error())
	}
	var fields map[string]any
	if err := json.Unmarshal(encoded, &fields); err != nil || fields == nil {
		return nil, backend.NewError(http.StatusBadRequest, "document_invalid_structure", "document data must be a JSON object")
	}
	for k := range fields {
		if strings.HasPrefix(k, "$") {
			delete(fields, k)
		}
	}
	return fields, nil
}

func decodeFields(data string) (map[string]any, error) {
	fields := map[string]any{}
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return nil, fmt.Errorf("sqlstore: decode document: %w", err)
	}
	return fields, nil
}

// render adds the system attributes to the stored fields.
func render(row documentRow, fields map[string]any) (json.RawMessage, error) {
	out := make(map[string]any, len(fields)+5)
	for k, v := range fields {
		out[k] = v
	}
	out["$id"] = row.DocumentID
	out["$databaseId"] = row.DatabaseID
	out["$collectionId"] = row.CollectionID
	out["$createdAt"] = row.CreatedAt.UTC().Format(time.RFC3339Nano)
	out["$updatedAt"] = row.UpdatedAt.UTC().Format(time.RFC3339Nano)

	doc, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: encode document: %w", err)
	}
	return doc, nil
}

func matchesAll(fields map[string]any, queries []backend.Query) bool {
	for _, q := range queries {
		if !matchesEqual(fields[q.Attribute], q.Values) {
			return false
		}
	}
	return true
}

// matchesEqual compares JSON encodings so that numbers decoded as float64
// match the integers callers pass in.
func matchesEqual(value any, candidates []any) bool {
	have, err := json.Marshal(value)
	if err != nil {
		return false
	}
	for _, c := range candidates {
		want, err := json.Marshal(normalize(c))
		if err == nil && bytes.Equal(have, want) {
			return true
		}
	}
	return false
}

func normalize(v any) any {
	encoded, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return v
	}
	return out
}
