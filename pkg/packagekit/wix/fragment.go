package wix

import (
	"context"
	"encoding/xml"
	"io"
	"strings"

	"github.com/go-kit/kit/log/level"
	"github.com/kolide/wixfrag/pkg/contexts/ctxlog"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
)

const (
	xmlDeclaration = `<?xml version="1.0" encoding="utf-8"?>` + "\n"
	xmlIndent      = "  "
)

// Stats counts what a FragmentWriter emitted.
type Stats struct {
	Directories int
	Files       int
	Components  int
}

// FragmentWriter writes the directories and features include files.
type FragmentWriter struct {
	directories io.Writer
	features    io.Writer

	prefix       string // variant prefix for every identifier
	win64        YesNoType
	keyPath      YesNoType
	sourcePrefix string
	separator    string
	extras       []ExtraComponent

	guidFunc GuidFunc // Allows test overrides
}

type FragmentOpt func(*FragmentWriter)

func WithPrefix(prefix string) FragmentOpt {
	return func(fw *FragmentWriter) {
		fw.prefix = prefix
	}
}

func WithWin64(win64 YesNoType) FragmentOpt {
	return func(fw *FragmentWriter) {
		fw.win64 = win64
	}
}

// WithKeyPath sets KeyPath on every File. Unset, the attribute is
// omitted and wix picks the key path itself.
func WithKeyPath(keyPath YesNoType) FragmentOpt {
	return func(fw *FragmentWriter) {
		fw.keyPath = keyPath
	}
}

// WithSourcePrefix sets the string prepended to every File Source. It
// should be the path, as seen by candle, to the parent of the scanned
// root, including a trailing separator.
func WithSourcePrefix(prefix string) FragmentOpt {
	return func(fw *FragmentWriter) {
		fw.sourcePrefix = prefix
	}
}

// WithSeparator sets the path separator used in File Source.
func WithSeparator(sep string) FragmentOpt {
	return func(fw *FragmentWriter) {
		fw.separator = sep
	}
}

func WithGuidFunc(f GuidFunc) FragmentOpt {
	return func(fw *FragmentWriter) {
		fw.guidFunc = f
	}
}

func WithExtraComponents(extras ...ExtraComponent) FragmentOpt {
	return func(fw *FragmentWriter) {
		fw.extras = append(fw.extras, extras...)
	}
}

// NewFragmentWriter returns a FragmentWriter that writes the
// directories fragment to directories, and the features fragment to
// features.
func NewFragmentWriter(directories, features io.Writer, opts ...FragmentOpt) *FragmentWriter {
	fw := &FragmentWriter{
		directories: directories,
		features:    features,
		win64:       No,
		separator:   `\`,
		guidFunc:    NewGuid,
	}

	for _, opt := range opts {
		opt(fw)
	}

	return fw
}

// frame is one level of the depth stack. remaining is a copy of the
// directory's subdirectories, consumed as each one is visited.
type frame struct {
	dir       *Dir
	remaining []*Dir
}

type dirStack []*frame

func (s *dirStack) push(f *frame) { *s = append(*s, f) }

func (s *dirStack) top() *frame { return (*s)[len(*s)-1] }

func (s *dirStack) pop() *frame {
	f := s.top()
	*s = (*s)[:len(*s)-1]
	return f
}

// fragmentEncoders pairs the two output streams. Every component is
// written to both, in the same order.
type fragmentEncoders struct {
	directories *xml.Encoder
	features    *xml.Encoder

	// issued maps each identifier already written, keyed by element,
	// to the path it was issued for.
	issued map[xml.Name]map[string]string
}

// claim records id as issued for owner. Sanitized names are not
// unique, so two entries can land on the same identifier.
func (encs *fragmentEncoders) claim(element xml.Name, id, owner string) error {
	ids, ok := encs.issued[element]
	if !ok {
		ids = make(map[string]string)
		encs.issued[element] = ids
	}
	if prev, ok := ids[id]; ok {
		return errors.Errorf("duplicate identifier %s for %s, already issued for %s", id, owner, prev)
	}
	ids[id] = owner
	return nil
}

// Write emits both fragments for the tree rooted at root. Output is
// interleaved on the two writers as the tree is walked. On error,
// whatever was written stays written.
func (fw *FragmentWriter) Write(ctx context.Context, root *Dir) (Stats, error) {
	ctx, span := trace.StartSpan(ctx, "wix.FragmentWriter.Write")
	defer span.End()

	var stats Stats

	if root == nil {
		return stats, errors.New("no tree to write")
	}

	encs, err := fw.start()
	if err != nil {
		return stats, err
	}

	var stack dirStack
	step := 0
	next := root

	for next != nil {
		if err := fw.visit(ctx, encs, next, step, &stats); err != nil {
			return stats, errors.Wrapf(err, "writing %s", next.Path)
		}
		step++

		stack.push(&frame{dir: next, remaining: append([]*Dir(nil), next.Dirs...)})
		next = nil

		// Close every directory whose children are all written, then
		// descend into the next sibling still pending.
		for len(stack) > 0 {
			top := stack.top()
			if len(top.remaining) > 0 {
				next, top.remaining = top.remaining[0], top.remaining[1:]
				break
			}

			if len(stack) == 1 {
				if err := fw.writeExtras(encs, &stats); err != nil {
					return stats, err
				}
			}

			if err := encs.directories.EncodeToken(xml.EndElement{Name: directoryName}); err != nil {
				return stats, errors.Wrapf(err, "closing directory %s", top.dir.Path)
			}
			stack.pop()
		}
	}

	if err := fw.finish(encs); err != nil {
		return stats, err
	}

	return stats, nil
}

func (fw *FragmentWriter) start() (*fragmentEncoders, error) {
	encs := &fragmentEncoders{
		issued: make(map[xml.Name]map[string]string),
	}

	for _, out := range []struct {
		w   io.Writer
		enc **xml.Encoder
	}{
		{fw.directories, &encs.directories},
		{fw.features, &encs.features},
	} {
		if _, err := io.WriteString(out.w, xmlDeclaration); err != nil {
			return nil, errors.Wrap(err, "writing xml declaration")
		}

		enc := xml.NewEncoder(out.w)
		enc.Indent("", xmlIndent)
		if err := enc.EncodeToken(xml.StartElement{Name: includeName}); err != nil {
			return nil, errors.Wrap(err, "opening include")
		}
		*out.enc = enc
	}

	return encs, nil
}

func (fw *FragmentWriter) finish(encs *fragmentEncoders) error {
	for _, out := range []struct {
		w   io.Writer
		enc *xml.Encoder
	}{
		{fw.directories, encs.directories},
		{fw.features, encs.features},
	} {
		if err := out.enc.EncodeToken(xml.EndElement{Name: includeName}); err != nil {
			return errors.Wrap(err, "closing include")
		}
		// Close errors on any element left open.
		if err := out.enc.Close(); err != nil {
			return errors.Wrap(err, "closing encoder")
		}
		if _, err := io.WriteString(out.w, "\n"); err != nil {
			return errors.Wrap(err, "writing trailing newline")
		}
	}

	return nil
}

// visit opens the Directory for d and writes a component, and its
// reference, for each of d's files.
func (fw *FragmentWriter) visit(ctx context.Context, encs *fragmentEncoders, d *Dir, step int, stats *Stats) error {
	level.Debug(ctxlog.FromContext(ctx)).Log(
		"msg", "processing directory",
		"path", d.Path,
		"step", step,
		"files", len(d.Files),
	)

	dirId := DirectoryId(fw.prefix, d.Name, step)
	if err := encs.claim(directoryName, dirId, d.Path); err != nil {
		return err
	}
	if err := encs.directories.EncodeToken(directoryStart(dirId, d.Name)); err != nil {
		return errors.Wrap(err, "opening directory")
	}
	stats.Directories++

	sourceDir := fw.sourcePrefix + strings.ReplaceAll(d.Path, "/", fw.separator) + fw.separator

	for _, name := range d.Files {
		guid, err := fw.guidFunc()
		if err != nil {
			return err
		}

		component := &Component{
			Id:    ComponentId(fw.prefix, name, step),
			Guid:  guid,
			Win64: fw.win64,
			File: &File{
				Id:      FileId(fw.prefix, name, step),
				Name:    name,
				Source:  sourceDir + name,
				KeyPath: fw.keyPath,
			},
		}

		if err := encs.writeComponent(component, d.Path+"/"+name); err != nil {
			return errors.Wrapf(err, "file %s", name)
		}
		stats.Files++
		stats.Components++
	}

	return nil
}

func (fw *FragmentWriter) writeExtras(encs *fragmentEncoders, stats *Stats) error {
	for _, extra := range fw.extras {
		guid, err := fw.guidFunc()
		if err != nil {
			return err
		}

		component := &Component{
			Id:    fw.prefix + extra.Id,
			Guid:  guid,
			Win64: fw.win64,
			File: &File{
				Id:       fw.prefix + extra.FileId,
				Name:     extra.Name,
				Source:   fw.sourcePrefix + strings.ReplaceAll(extra.Source, "/", fw.separator),
				KeyPath:  fw.keyPath,
				Shortcut: extra.Shortcut,
			},
		}

		if err := encs.writeComponent(component, extra.Source); err != nil {
			return errors.Wrapf(err, "extra component %s", extra.Id)
		}
		stats.Components++
	}

	return nil
}

func (encs *fragmentEncoders) writeComponent(c *Component, owner string) error {
	if err := encs.claim(componentName, c.Id, owner); err != nil {
		return err
	}
	if err := encs.claim(fileName, c.File.Id, owner); err != nil {
		return err
	}

	if err := encs.directories.Encode(c); err != nil {
		return errors.Wrap(err, "encoding component")
	}
	if err := encs.features.Encode(&ComponentRef{Id: c.Id}); err != nil {
		return errors.Wrap(err, "encoding component ref")
	}
	return nil
}
