// Package clrmeta reads type definitions from a managed assembly so the
// documentation pipeline can tell public types from internal ones.
//
// Only what visibility needs is decoded: the PE image is located with
// debug/pe, then the CLI header, the metadata root and the tables stream,
// from which the TypeDef and NestedClass tables are read.
package clrmeta

import (
	"debug/pe"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/agentflare-ai/go-xmldocmd/internal/member"
)

const (
	textCodeReadFailed = "ASSEMBLY_READ_FAILED"
	textCodeInvalid    = "ASSEMBLY_INVALID"

	dirCLIHeader = 14
	cliHeaderLen = 72
)

var (
	ErrNotPE             = errors.New("not a PE image")
	ErrNoCLIHeader       = errors.New("image has no CLI header")
	ErrMalformedMetadata = errors.New("malformed CLI metadata")
)

// Visibility is the TypeAttributes visibility mask.
type Visibility uint32

const (
	NotPublic Visibility = iota
	Public
	NestedPublic
	NestedPrivate
	NestedFamily
	NestedAssembly
	NestedFamANDAssem
	NestedFamORAssem
)

func (v Visibility) String() string {
	switch v {
	case NotPublic:
		return "not public"
	case Public:
		return "public"
	case NestedPublic:
		return "nested public"
	case NestedPrivate:
		return "nested private"
	case NestedFamily:
		return "nested family"
	case NestedAssembly:
		return "nested assembly"
	case NestedFamANDAssem:
		return "nested family and assembly"
	case NestedFamORAssem:
		return "nested family or assembly"
	}
	return fmt.Sprintf("visibility(%d)", uint32(v))
}

// TypeDef is one row of the TypeDef table. DeclaringType is the dotted name
// of the enclosing type for nested types.
type TypeDef struct {
	Namespace     string
	Name          string
	Flags         uint32
	DeclaringType string
}

func (t TypeDef) Visibility() Visibility { return Visibility(t.Flags & 0x7) }

// Nested reports whether the type is declared inside another type.
func (t TypeDef) Nested() bool { return t.Visibility() > Public }

// FullName is the name documentation identifiers use: Namespace.Name,
// DeclaringType.Name for nested types, or Name for the global namespace.
func (t TypeDef) FullName() string {
	if t.DeclaringType != "" {
		return t.DeclaringType + "." + t.Name
	}
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

// Assembly answers visibility queries against the types of one image.
type Assembly struct {
	Path  string
	Types []TypeDef

	byName map[string]TypeDef
}

var _ member.Oracle = (*Assembly)(nil)

// Open reads the type definitions of the assembly at path.
func Open(path string) (*Assembly, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryCommand, "open assembly "+path).
			WithTextCode(textCodeReadFailed)
	}
	defer f.Close()

	img, err := pe.NewFile(f)
	if err != nil {
		return nil, invalid(fmt.Errorf("%w: %v", ErrNotPE, err), path)
	}
	defer img.Close()

	blob, err := metadataBlob(img)
	if err != nil {
		return nil, invalid(err, path)
	}
	types, err := parseMetadata(blob)
	if err != nil {
		return nil, invalid(err, path)
	}
	return NewAssembly(path, types), nil
}

// NewAssembly indexes already decoded type definitions.
func NewAssembly(path string, types []TypeDef) *Assembly {
	a := &Assembly{
		Path:   path,
		Types:  types,
		byName: make(map[string]TypeDef, len(types)),
	}
	for _, t := range types {
		a.byName[t.FullName()] = t
	}
	return a
}

// Name is the file name without extension.
func (a *Assembly) Name() string {
	base := filepath.Base(a.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IsPublic reports whether typeName is a public top-level type. Nested types
// report false. Unknown names are an error wrapping member.ErrTypeNotFound.
func (a *Assembly) IsPublic(typeName string) (bool, error) {
	if t, ok := a.byName[typeName]; ok {
		return !t.Nested() && t.Visibility() == Public, nil
	}
	return false, fmt.Errorf("%w: %s is not defined in %s", member.ErrTypeNotFound, typeName, a.Name())
}

func metadataBlob(img *pe.File) ([]byte, error) {
	var dirs []pe.DataDirectory
	switch oh := img.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		dirs = oh.DataDirectory[:min(int(oh.NumberOfRvaAndSizes), len(oh.DataDirectory))]
	case *pe.OptionalHeader64:
		dirs = oh.DataDirectory[:min(int(oh.NumberOfRvaAndSizes), len(oh.DataDirectory))]
	}
	if len(dirs) <= dirCLIHeader || dirs[dirCLIHeader].VirtualAddress == 0 {
		return nil, ErrNoCLIHeader
	}
	header, err := readRVA(img, dirs[dirCLIHeader].VirtualAddress, cliHeaderLen)
	if err != nil {
		return nil, err
	}
	rva := binary.LittleEndian.Uint32(header[8:])
	size := binary.LittleEndian.Uint32(header[12:])
	return readRVA(img, rva, size)
}

func readRVA(img *pe.File, rva, size uint32) ([]byte, error) {
	for _, s := range img.Sections {
		extent := max(s.VirtualSize, s.Size)
		if rva < s.VirtualAddress || rva >= s.VirtualAddress+extent {
			continue
		}
		data, err := s.Data()
		if err != nil {
			return nil, err
		}
		off := uint64(rva - s.VirtualAddress)
		if off+uint64(size) > uint64(len(data)) {
			return nil, fmt.Errorf("%w: rva %#x+%d outside section %s", ErrMalformedMetadata, rva, size, s.Name)
		}
		return data[off : off+uint64(size)], nil
	}
	return nil, fmt.Errorf("%w: rva %#x not mapped by any section", ErrMalformedMetadata, rva)
}

func invalid(err error, path string) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation,
		fmt.Sprintf("read assembly %s: %v", path, err)).
		WithTextCode(textCodeInvalid)
}
