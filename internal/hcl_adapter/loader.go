package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/denoisegridgo/internal/cfgerror"
	"github.com/vk/denoisegridgo/internal/ctxlog"
	"github.com/vk/denoisegridgo/internal/selector"
)

// Model is the fully translated configuration of one run.
type Model struct {
	Selections []*selector.Selection
	Inputs     *Inputs
}

// Inputs names the file-based base resources of a run.
type Inputs struct {
	Functional       string
	BrainMask        string
	GreyMatter       string
	WhiteMatter      string
	CSFUnmasked      string
	Ventricles       string
	Anatomical       map[string]string
	MotionParameters string
	FD               string
	DVARS            string
	Transform        *TransformSpec
}

// TransformSpec names a precomputed transform: Kind is "linear" (one matrix
// applied as supplied) or "chain" (initial, rigid, and affine matrices
// composed and inverted).
type TransformSpec struct {
	Kind     string
	Matrices []string
}

// Loader parses selection files into the typed model.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under the given paths, translates all
// selection blocks, validates them, and merges inputs blocks. Selection
// names must be unique across files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	model := &Model{}
	seen := make(map[string]string)
	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, block := range root.Selections {
			if prev, ok := seen[block.Name]; ok {
				return nil, cfgerror.Newf("selection %q in %s already defined in %s", block.Name, file, prev)
			}
			seen[block.Name] = file

			sel, err := translateSelection(block)
			if err != nil {
				return nil, fmt.Errorf("in %s: %w", file, err)
			}
			if err := sel.Validate(); err != nil {
				return nil, fmt.Errorf("in %s: %w", file, err)
			}
			model.Selections = append(model.Selections, sel)
		}

		if root.Inputs != nil {
			if model.Inputs != nil {
				return nil, cfgerror.Newf("inputs block in %s conflicts with an earlier inputs block", file)
			}
			model.Inputs = translateInputs(root.Inputs)
		}
	}

	logger.Debug("HCL loading complete.", "selections", len(model.Selections))
	return model, nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl
// files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // It's not an error if a configured path doesn't exist.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && filepath.Ext(p) == ".hcl" {
					if _, wasSeen := seen[p]; !wasSeen {
						allFiles = append(allFiles, p)
						seen[p] = struct{}{}
					}
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if filepath.Ext(path) == ".hcl" {
			if _, wasSeen := seen[path]; !wasSeen {
				allFiles = append(allFiles, path)
				seen[path] = struct{}{}
			}
		}
	}
	return allFiles, nil
}
