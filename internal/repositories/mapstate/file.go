package mapstate

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/serumrl/map-engine/internal/errors"
	"github.com/serumrl/map-engine/internal/mapfile"
)

const mapFileExt = ".map"

// FileConfig holds the dependencies for the file-backed repository.
type FileConfig struct {
	// Dir is the directory holding one <name>.map file per map. Created on
	// first save if absent.
	Dir string
}

// Validate ensures the configuration is usable.
func (c *FileConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Dir == "" {
		vb.RequiredField("Dir")
	}
	return vb.Build()
}

type fileRepository struct {
	dir    string
	parser *mapfile.Parser
	writer *mapfile.Writer
}

// NewFileRepository creates a repository storing maps as text files. Writes
// go through a temp file and rename, so a crash never leaves a torn map.
func NewFileRepository(cfg *FileConfig) (Repository, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid file repository config")
	}

	return &fileRepository{
		dir:    cfg.Dir,
		parser: mapfile.NewParser(nil),
		writer: mapfile.NewWriter(),
	}, nil
}

func (r *fileRepository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	if input.State == nil {
		return nil, errors.InvalidArgument(errStateNil)
	}
	name := input.State.Metadata.Name
	if name == "" {
		return nil, errors.InvalidArgument(errNameEmpty)
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	text, err := r.writer.WriteString(input.State)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to serialize map %q", name)
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create map directory %q", r.dir)
	}

	tmp, err := os.CreateTemp(r.dir, name+".tmp-*")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return nil, errors.Wrapf(err, "failed to write map %q", name)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return nil, errors.Wrapf(err, "failed to close temp file for map %q", name)
	}

	if err := os.Rename(tmpName, r.path(name)); err != nil {
		os.Remove(tmpName)
		return nil, errors.Wrapf(err, "failed to commit map %q", name)
	}

	return &SaveOutput{}, nil
}

func (r *fileRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.Name == "" {
		return nil, errors.InvalidArgument(errNameEmpty)
	}
	if err := validateName(input.Name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path(input.Name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("map %q not found", input.Name)
		}
		return nil, errors.Wrapf(err, "failed to read map %q", input.Name)
	}

	state, err := r.parser.ParseString(string(data))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse stored map %q", input.Name)
	}

	return &GetOutput{State: state}, nil
}

func (r *fileRepository) List(ctx context.Context, _ ListInput) (*ListOutput, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return &ListOutput{}, nil
		}
		return nil, errors.Wrapf(err, "failed to read map directory %q", r.dir)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), mapFileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), mapFileExt))
	}

	sort.Strings(names)
	return &ListOutput{Names: names}, nil
}

func (r *fileRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.Name == "" {
		return nil, errors.InvalidArgument(errNameEmpty)
	}
	if err := validateName(input.Name); err != nil {
		return nil, err
	}

	if err := os.Remove(r.path(input.Name)); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("map %q not found", input.Name)
		}
		return nil, errors.Wrapf(err, "failed to delete map %q", input.Name)
	}

	return &DeleteOutput{}, nil
}

func (r *fileRepository) path(name string) string {
	return filepath.Join(r.dir, name+mapFileExt)
}

// validateName rejects names that would escape the map directory.
func validateName(name string) error {
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return errors.InvalidArgumentf("map name %q must not contain path separators", name)
	}
	return nil
}
