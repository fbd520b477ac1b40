package entity

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/reloquent/entitycheck/internal/diag"
)

// DefaultExtension is the extension of declaration files.
const DefaultExtension = ".cs"

const maxCarryLines = 32

var (
	classPattern    = regexp.MustCompile(`\bpublic\s+((?:(?:abstract|sealed|partial)\s+)*)class\s+(\w+)`)
	propertyPattern = regexp.MustCompile(`\bpublic\s+(?:(?:virtual|override|required|new)\s+)*` +
		`([\w\.\?]+(?:<[\w\.\?<>,\s\[\]]*>)?\??(?:\[\])?\??)\s+(\w+)\s*` +
		`\{\s*get;\s*(?:(?:private|protected|internal)\s+)?(?:set|init);\s*\}`)
)

// Options controls which files are scanned.
type Options struct {
	// Extension selects declaration files, DefaultExtension when empty.
	Extension string
	// Recursive descends into subdirectories.
	Recursive bool
}

// Scan reads every declaration file in dir. Files are processed in lexical
// order. A missing directory or one without matching files yields an empty
// model; an unreadable file is recorded as a diagnostic and skipped.
func Scan(dir string, opts Options) (*Model, diag.Diagnostics) {
	var diags diag.Diagnostics
	m := NewModel()

	files, err := listFiles(dir, opts)
	if err != nil {
		diags.AddWarning(diag.CodeNoEntityFiles, dir, fmt.Sprintf("listing declaration files: %v", err))
		return m, diags
	}
	if len(files) == 0 {
		diags.AddInfo(diag.CodeNoEntityFiles, dir, "no declaration files found")
		return m, diags
	}

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			diags.AddError(diag.CodeFileUnreadable, path, err.Error())
			continue
		}
		m.Files++
		ScanSource(m, path, string(data))
	}
	return m, diags
}

// ScanSource scans one file's content into m.
func ScanSource(m *Model, file, src string) {
	s := &fileScanner{model: m, file: file}
	for _, line := range strings.Split(src, "\n") {
		s.line(line)
	}
	for len(s.carry) > 0 {
		s.abandonCarry()
	}
}

// abandonCarry gives up on an attribute list that never closed. Its opening
// line is dropped and the lines joined after it are scanned on their own.
func (s *fileScanner) abandonCarry() {
	rest := s.carry[1:]
	s.carry = nil
	for _, text := range rest {
		s.code(text)
	}
}

func listFiles(dir string, opts Options) ([]string, error) {
	ext := opts.Extension
	if ext == "" {
		ext = DefaultExtension
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var files []string
	if opts.Recursive {
		err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ext) {
				files = append(files, path)
			}
			return nil
		})
	} else {
		var entries []os.DirEntry
		entries, err = os.ReadDir(dir)
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ext) {
				files = append(files, filepath.Join(dir, e.Name()))
			}
		}
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// fileScanner holds the rolling state while scanning one file.
type fileScanner struct {
	model *Model
	file  string

	pending      []annotation
	current      *Declaration
	carry        []string // lines of an unterminated attribute list
	blockComment bool
}

func (s *fileScanner) line(raw string) {
	s.code(s.stripComments(strings.TrimSpace(raw)))
}

// code scans one comment-free line.
func (s *fileScanner) code(text string) {
	text = strings.TrimSpace(text)
	if len(s.carry) > 0 {
		s.carry = append(s.carry, text)
		text = strings.Join(s.carry, " ")
	}

	// Leading attribute lists feed the pending buffer; whatever follows them
	// on the same line is code.
	for strings.HasPrefix(text, "[") {
		end := closingBracket(text)
		if end < 0 {
			if len(s.carry) == 0 {
				s.carry = []string{text}
			}
			if len(s.carry) > maxCarryLines {
				s.abandonCarry()
			}
			return
		}
		s.carry = nil
		s.pending = append(s.pending, parseAnnotations(text[1:end])...)
		text = strings.TrimSpace(text[end+1:])
	}
	if text == "" {
		return
	}

	if m := classPattern.FindStringSubmatch(text); m != nil {
		s.startClass(m[2], strings.Contains(m[1], "partial"))
		return
	}
	if s.current == nil {
		return
	}
	if m := propertyPattern.FindStringSubmatch(text); m != nil {
		s.addProperty(strings.TrimSpace(m[1]), m[2])
	}
}

func (s *fileScanner) startClass(name string, partial bool) {
	table, hasTable := s.lookup("Table")

	if d, ok := s.model.Lookup(name); ok && partial {
		if hasTable {
			d.TableName = table
		}
		s.current = d
		s.pending = nil
		return
	}

	d := &Declaration{
		ClassName:  name,
		TableName:  name,
		SourceFile: s.file,
	}
	if hasTable {
		d.TableName = table
	}
	s.model.put(d)
	s.current = d
	s.pending = nil
}

func (s *fileScanner) addProperty(declaredType, name string) {
	fk, _ := s.lookup("ForeignKey")
	column, hasColumn := s.lookup("Column")
	s.pending = nil

	if IsScalar(declaredType) {
		if !hasColumn {
			column = name
		}
		s.current.setProperty(Property{
			Column:       column,
			PropertyName: name,
			DeclaredType: declaredType,
		})
		return
	}
	s.current.setNavigation(Navigation{
		PropertyName: name,
		DeclaredType: declaredType,
		ForeignKey:   fk,
	})
}

// lookup returns the literal argument of the last pending attribute with the
// given name that carries one.
func (s *fileScanner) lookup(name string) (string, bool) {
	var (
		val   string
		found bool
	)
	for _, a := range s.pending {
		if !a.is(name) {
			continue
		}
		if v, ok := a.literal(); ok {
			val, found = v, true
		}
	}
	return val, found
}

// stripComments removes // and /* */ comments outside literals.
func (s *fileScanner) stripComments(text string) string {
	var b strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if s.blockComment {
			if c == '*' && i+1 < len(text) && text[i+1] == '/' {
				s.blockComment = false
				i++
			}
			continue
		}
		if end, ok := skipLiteral(text, i); ok {
			end = min(end, len(text)-1)
			b.WriteString(text[i : end+1])
			i = end
			continue
		}
		if c == '/' && i+1 < len(text) {
			if text[i+1] == '/' {
				break
			}
			if text[i+1] == '*' {
				s.blockComment = true
				i++
				continue
			}
		}
		b.WriteByte(c)
	}
	return strings.TrimSpace(b.String())
}
