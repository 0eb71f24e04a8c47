package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"profile-directory/core/storage"
	"profile-directory/feature/profile/models"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

// Prefix is the folder holding directory snapshots.
const Prefix = "snapshots/"

// Lister provides the current public profiles.
type Lister interface {
	List(query string) []models.Profile
}

// Snapshot is the content of one exported snapshot.
type Snapshot struct {
	GeneratedAt time.Time        `json:"generatedAt"`
	Total       int              `json:"total"`
	Profiles    []models.Profile `json:"profiles"`
}

// Info describes a stored snapshot.
type Info struct {
	Name      string    `json:"name"`
	Object    string    `json:"object"`
	Size      int64     `json:"size"`
	Total     int       `json:"total,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Service writes compressed directory snapshots to object storage.
type Service struct {
	client storage.Client
	lister Lister
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new export service.
func NewService(client storage.Client, lister Lister, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		lister: lister,
		logger: logger,
		now:    time.Now,
	}
}

// Export stores the current public directory as a gzip compressed JSON snapshot.
func (s *Service) Export(ctx context.Context) (*Info, error) {
	created, err := s.client.EnsureBucket(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare bucket %s: %w", s.client.Bucket(), err)
	}
	if created {
		s.logger.Info("Created snapshot bucket", zap.String("bucket", s.client.Bucket()))
	}

	createdAt := s.now().UTC()
	profiles := s.lister.List("")
	snapshot := Snapshot{GeneratedAt: createdAt, Total: len(profiles), Profiles: profiles}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := json.NewEncoder(zw).Encode(snapshot); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress snapshot: %w", err)
	}

	name := fmt.Sprintf("public-profiles-%d.json.gz", createdAt.Unix())
	object := Prefix + name
	size := int64(buf.Len())

	err = s.client.Put(ctx, object, buf.Bytes(), storage.PutOptions{
		ContentType:     "application/json",
		ContentEncoding: "gzip",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload snapshot: %w", err)
	}

	s.logger.Info("Exported directory snapshot",
		zap.String("object", object),
		zap.Int("profiles", len(profiles)),
		zap.Int64("bytes", size))

	return &Info{Name: name, Object: object, Size: size, Total: len(profiles), CreatedAt: createdAt}, nil
}

// List returns the stored snapshots, newest first.
func (s *Service) List(ctx context.Context) ([]Info, error) {
	exists, err := s.client.BucketExists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return []Info{}, nil
	}

	objects, err := s.client.List(ctx, Prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	infos := []Info{}
	for _, obj := range objects {
		if !strings.HasSuffix(obj.Key, ".json.gz") {
			continue
		}
		infos = append(infos, Info{
			Name:      path.Base(obj.Key),
			Object:    obj.Key,
			Size:      obj.Size,
			CreatedAt: obj.LastModified,
		})
	}

	// Names embed the unix time, so the lexical order of equal-length names is chronological.
	sort.Slice(infos, func(i, j int) bool {
		if len(infos[i].Name) != len(infos[j].Name) {
			return len(infos[i].Name) > len(infos[j].Name)
		}
		return infos[i].Name > infos[j].Name
	})
	return infos, nil
}

// Load reads and decompresses a snapshot by name.
func (s *Service) Load(ctx context.Context, name string) (*Snapshot, error) {
	if name == "" || strings.Contains(name, "/") {
		return nil, fmt.Errorf("invalid snapshot name %q", name)
	}

	obj, err := s.client.Get(ctx, Prefix+name)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	defer obj.Close()

	zr, err := gzip.NewReader(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snapshot, nil
}

// Prune removes all but the keep newest snapshots and returns the removed names.
func (s *Service) Prune(ctx context.Context, keep int) ([]string, error) {
	if keep < 0 {
		keep = 0
	}
	infos, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(infos) <= keep {
		return []string{}, nil
	}

	removed := []string{}
	for _, info := range infos[keep:] {
		if err := s.client.Remove(ctx, info.Object); err != nil {
			return removed, fmt.Errorf("failed to remove snapshot %s: %w", info.Name, err)
		}
		removed = append(removed, info.Name)
	}

	s.logger.Info("Pruned directory snapshots", zap.Int("removed", len(removed)), zap.Int("kept", keep))
	return removed, nil
}
