package workspace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/rotisserie/eris"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/fdcavalcanti/ntxbuild/pkg/ntxerr"
)

// RecordFile is the environment record kept at the workspace root.
const RecordFile = ".ntxenv"

// Record is the environment state saved by a successful setup.
type Record struct {
	WorkspacePath string `yaml:"workspace_path" json:"workspace_path" jsonschema:"minLength=1,description=Absolute path of the workspace root"`
	OSDir         string `yaml:"os_dir" json:"os_dir" jsonschema:"minLength=1,description=Name of the NuttX OS directory"`
	AppsDir       string `yaml:"apps_dir" json:"apps_dir" jsonschema:"minLength=1,description=Name of the NuttX apps directory"`
	BuildTool     string `yaml:"build_tool" json:"build_tool" jsonschema:"minLength=1,description=Build tool executable"`
}

// OSPath returns the absolute path of the OS directory.
func (r *Record) OSPath() string {
	return filepath.Join(r.WorkspacePath, r.OSDir)
}

// AppsPath returns the absolute path of the apps directory.
func (r *Record) AppsPath() string {
	return filepath.Join(r.WorkspacePath, r.AppsDir)
}

// RecordPath returns where the record for workspacePath lives.
func RecordPath(workspacePath string) string {
	return filepath.Join(workspacePath, RecordFile)
}

// Save writes rec to the record file at rec.WorkspacePath.
func Save(rec Record) error {
	if errs := validateRecord(rec); len(errs) > 0 {
		return eris.Wrapf(ntxerr.ErrInvalidArg, "environment record: %s", strings.Join(errs, "; "))
	}
	var buf bytes.Buffer
	buf.WriteString("# ntxbuild environment, written by 'ntxbuild start'\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(rec); err != nil {
		return eris.Wrap(err, "encode environment record")
	}
	if err := enc.Close(); err != nil {
		return eris.Wrap(err, "encode environment record")
	}
	path := RecordPath(rec.WorkspacePath)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return eris.Wrapf(err, "write %s", path)
	}
	return nil
}

// Load reads the record saved at workspacePath.
func Load(workspacePath string) (*Record, error) {
	path := RecordPath(workspacePath)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, eris.Wrapf(ntxerr.ErrRecordNotFound, "%s", path)
		}
		return nil, eris.Wrapf(err, "read %s", path)
	}

	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, eris.Wrapf(ntxerr.ErrRecordCorrupt, "%s: %v", path, err)
	}
	if errs := validateRecord(rec); len(errs) > 0 {
		return nil, eris.Wrapf(ntxerr.ErrRecordCorrupt, "%s: %s", path, strings.Join(errs, "; "))
	}
	return &rec, nil
}

// Clear removes the record. A missing record is not an error.
func Clear(workspacePath string) error {
	path := RecordPath(workspacePath)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return eris.Wrapf(err, "remove %s", path)
	}
	return nil
}

// GenerateRecordSchema produces the JSON Schema document describing Record.
func GenerateRecordSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true

	s := r.Reflect(&Record{})
	s.ID = "https://github.com/fdcavalcanti/ntxbuild/schemas/ntxenv-v1.json"
	s.Title = "ntxbuild environment record"
	s.Description = "Schema for the .ntxenv file kept at a NuttX workspace root"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "marshal record schema")
	}
	return data, nil
}

var (
	schemaOnce sync.Once
	schemaErr  error
	compiled   *sjsonschema.Schema
)

func recordSchema() (*sjsonschema.Schema, error) {
	schemaOnce.Do(func() {
		raw, err := GenerateRecordSchema()
		if err != nil {
			schemaErr = err
			return
		}
		var doc interface{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			schemaErr = eris.Wrap(err, "parse record schema")
			return
		}
		c := sjsonschema.NewCompiler()
		if err := c.AddResource("ntxenv.json", doc); err != nil {
			schemaErr = eris.Wrap(err, "add record schema")
			return
		}
		compiled, schemaErr = c.Compile("ntxenv.json")
	})
	return compiled, schemaErr
}

// validateRecord checks rec against the generated schema and returns one
// message per violation.
func validateRecord(rec Record) []string {
	sch, err := recordSchema()
	if err != nil {
		return []string{err.Error()}
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return []string{err.Error()}
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return []string{err.Error()}
	}
	err = sch.Validate(doc)
	if err == nil {
		return nil
	}
	ve, ok := err.(*sjsonschema.ValidationError)
	if !ok {
		return []string{err.Error()}
	}
	var msgs []string
	for _, leaf := range flattenValidationErrors(ve) {
		loc := "/" + strings.Join(leaf.InstanceLocation, "/")
		msgs = append(msgs, fmt.Sprintf("%s: %s", loc, leaf.ErrorKind))
	}
	return msgs
}

func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, c := range ve.Causes {
		flat = append(flat, flattenValidationErrors(c)...)
	}
	return flat
}
