package wikirace

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"unicode"
)

// dumpReader parses MediaWiki SQL dump files of the form produced by
// mysqldump: a CREATE TABLE statement (read only for its column names)
// followed by one or more INSERT INTO ... VALUES (...), (...), ...;
// statements. Reading by column name rather than by position means a
// schema change that adds or reorders trailing columns never silently
// misparses a dump: the columns actually present are looked up by
// name in each parser's own code.
type dumpReader struct {
	lexer   sqlLexer
	columns []string
}

var errSQLParse = errors.New("wikirace: sql dump parse error")

func newDumpReader(r io.Reader) (*dumpReader, error) {
	rd := &dumpReader{
		lexer:   sqlLexer{bufio.NewReaderSize(r, 1<<20)},
		columns: make([]string, 0, 8),
	}

	if err := rd.skipUntil(sqlWord, "CREATE"); err != nil {
		return nil, err
	}
	if err := rd.parseCreate(); err != nil {
		return nil, err
	}

	if err := rd.skipUntil(sqlWord, "INSERT"); err != nil {
		return nil, err
	}
	if err := rd.skipUntil(sqlWord, "VALUES"); err != nil {
		return nil, err
	}

	return rd, nil
}

// Columns returns the column names declared by the dump's CREATE TABLE
// statement, in table order.
func (r *dumpReader) Columns() []string {
	return r.columns
}

// Read returns the next tuple's fields as strings, or (nil, io.EOF) once
// the dump file has no more INSERT statements. A dump table is usually
// split across many INSERT INTO ... VALUES (...), (...); statements;
// Read transparently advances to the next one when the current one is
// exhausted. NULL fields come back as the empty string, matching how
// MediaWiki dumps use NULL for absent optional columns.
func (r *dumpReader) Read() ([]string, error) {
	row, err := r.readRow()
	if err != nil {
		return nil, err
	}
	if row != nil {
		return row, nil
	}
	// Current INSERT statement is exhausted; look for the next one.
	if err := r.skipUntil(sqlWord, "INSERT"); err != nil {
		return nil, io.EOF
	}
	if err := r.skipUntil(sqlWord, "VALUES"); err != nil {
		return nil, io.EOF
	}
	return r.Read()
}

func (r *dumpReader) readRow() ([]string, error) {
	token, _, err := r.readToken()
	if err != nil {
		return nil, err
	}
	if token == sqlSemicolon {
		return nil, nil
	}
	if token == sqlComma {
		token, _, err = r.readToken()
		if err != nil {
			return nil, err
		}
	}
	if token != sqlLeftParen {
		return nil, errSQLParse
	}

	row := make([]string, 0, len(r.columns))
	for {
		token, txt, err := r.readToken()
		if err != nil {
			return nil, err
		}
		if token == sqlNumber || token == sqlText {
			row = append(row, txt)
		} else if token == sqlWord && txt == "NULL" {
			row = append(row, "")
		} else {
			return nil, errSQLParse
		}

		token, _, err = r.readToken()
		if err != nil {
			return nil, err
		}
		if token == sqlComma {
			continue
		} else if token == sqlRightParen {
			break
		}
		return nil, errSQLParse
	}

	return row, nil
}

func (r *dumpReader) parseCreate() error {
	if err := r.skipUntil(sqlLeftParen, ""); err != nil {
		return err
	}
	for {
		token, text, err := r.readToken()
		if err != nil {
			return err
		}
		if token != sqlName {
			return r.skipUntil(sqlSemicolon, "")
		}
		r.columns = append(r.columns, text)
		if err := r.skipUntilEither(sqlComma, sqlRightParen); err != nil {
			return err
		}
	}
}

func (r *dumpReader) skipUntil(token sqlToken, text string) error {
	for {
		tok, txt, err := r.lexer.read()
		if err != nil {
			return err
		}
		if tok == token && txt == text {
			return nil
		}
	}
}

func (r *dumpReader) skipUntilEither(t1, t2 sqlToken) error {
	parenDepth := 0
	for {
		tok, _, err := r.readToken()
		if err != nil {
			return err
		}
		if tok == sqlLeftParen {
			parenDepth++
			continue
		}
		if tok == sqlRightParen && parenDepth > 0 {
			parenDepth--
			continue
		}
		if tok == t1 || tok == t2 {
			return nil
		}
	}
}

func (r *dumpReader) readToken() (sqlToken, string, error) {
	for {
		got, txt, err := r.lexer.read()
		if got == sqlComment && err == nil {
			continue
		}
		return got, txt, err
	}
}

type sqlToken int

const (
	sqlUnexpected sqlToken = iota
	sqlWord                // CREATE, TABLE, INSERT, NULL, ...
	sqlName                // `page`, `page_id`
	sqlNumber              // 12, 12.3, -4
	sqlText                // 'some title'
	sqlComment
	sqlLeftParen
	sqlRightParen
	sqlComma
	sqlSemicolon
	sqlMinus
	sqlSlash
)

type sqlLexer struct {
	reader *bufio.Reader
}

func (lex *sqlLexer) read() (sqlToken, string, error) {
	var c rune
	var err error
	for {
		c, _, err = lex.reader.ReadRune()
		if err != nil || !unicode.IsSpace(c) {
			break
		}
	}
	if err != nil {
		return sqlUnexpected, "", err
	}

	switch c {
	case '`':
		text, err := lex.readUntil('`')
		return sqlName, text, err
	case '-':
		next, _, err := lex.reader.ReadRune()
		if err == io.EOF {
			return sqlMinus, "", nil
		} else if err != nil {
			return sqlUnexpected, "", err
		}
		if unreadErr := lex.reader.UnreadRune(); unreadErr != nil {
			return sqlUnexpected, "", unreadErr
		}
		if next == '-' {
			text, err := lex.readUntil('\n')
			if err != nil {
				return sqlUnexpected, "", err
			}
			return sqlComment, strings.TrimSpace(text[1:]), nil
		}
		if isSQLNumberStart(next) {
			return lex.readNumber(c)
		}
		return sqlMinus, "", nil
	case '\'':
		text, err := lex.readQuotedString()
		return sqlText, text, err
	case '/':
		next, _, err := lex.reader.ReadRune()
		if err == io.EOF {
			return sqlSlash, "", nil
		} else if err != nil {
			return sqlUnexpected, "", err
		}
		if next == '*' {
			return lex.readSlashStarComment()
		}
		if unreadErr := lex.reader.UnreadRune(); unreadErr != nil {
			return sqlUnexpected, "", unreadErr
		}
		return sqlSlash, "", nil
	case '(':
		return sqlLeftParen, "", nil
	case ')':
		return sqlRightParen, "", nil
	case ',':
		return sqlComma, "", nil
	case ';':
		return sqlSemicolon, "", nil
	}
	if isSQLWordChar(c) {
		return lex.readWord(c)
	}
	if isSQLNumberStart(c) {
		return lex.readNumber(c)
	}
	return sqlUnexpected, string(c), nil
}

func (lex *sqlLexer) readWord(start rune) (sqlToken, string, error) {
	var buf strings.Builder
	buf.WriteRune(start)
	for {
		c, _, err := lex.reader.ReadRune()
		if err == io.EOF {
			break
		} else if err != nil {
			return sqlUnexpected, "", err
		}
		if isSQLWordChar(c) {
			buf.WriteRune(c)
			continue
		}
		if err := lex.reader.UnreadRune(); err != nil {
			return sqlUnexpected, "", err
		}
		break
	}
	return sqlWord, buf.String(), nil
}

func (lex *sqlLexer) readNumber(start rune) (sqlToken, string, error) {
	gotDot := start == '.'
	var buf strings.Builder
	buf.WriteRune(start)
	for {
		c, _, err := lex.reader.ReadRune()
		if err == io.EOF {
			break
		} else if err != nil {
			return sqlUnexpected, "", err
		}
		if c == '.' && !gotDot {
			buf.WriteRune(c)
			gotDot = true
			continue
		}
		if c >= '0' && c <= '9' {
			buf.WriteRune(c)
			continue
		}
		if err := lex.reader.UnreadRune(); err != nil {
			return sqlUnexpected, "", err
		}
		break
	}
	return sqlNumber, buf.String(), nil
}

// readQuotedString reads a MySQL-escaped '...' string, applying the
// same escape policy as the page/redirect/linktarget title columns:
// \\, \', \n, \r, \t are recognized, and any other \X is preserved
// verbatim as \X.
func (lex *sqlLexer) readQuotedString() (string, error) {
	var buf strings.Builder
	for {
		c, _, err := lex.reader.ReadRune()
		if err != nil {
			return buf.String(), err
		}
		if c == '\'' {
			break
		}
		if c == '\\' {
			next, _, err := lex.reader.ReadRune()
			if err != nil {
				return buf.String(), err
			}
			switch next {
			case '\\':
				buf.WriteRune('\\')
			case '\'':
				buf.WriteRune('\'')
			case 'n':
				buf.WriteRune('\n')
			case 'r':
				buf.WriteRune('\r')
			case 't':
				buf.WriteRune('\t')
			default:
				buf.WriteRune('\\')
				buf.WriteRune(next)
			}
			continue
		}
		buf.WriteRune(c)
	}
	return buf.String(), nil
}

func (lex *sqlLexer) readUntil(delim rune) (string, error) {
	var buf strings.Builder
	for {
		c, _, err := lex.reader.ReadRune()
		if c == delim || err == io.EOF {
			break
		} else if err != nil {
			return "", err
		}
		buf.WriteRune(c)
	}
	return buf.String(), nil
}

func (lex *sqlLexer) readSlashStarComment() (sqlToken, string, error) {
	var buf strings.Builder
	var last rune
	for {
		c, _, err := lex.reader.ReadRune()
		if err == io.EOF {
			break
		} else if err != nil {
			return sqlUnexpected, "", err
		}
		if c == '/' && last == '*' {
			break
		}
		buf.WriteRune(c)
		last = c
	}
	text := strings.TrimSpace(strings.TrimSuffix(buf.String(), "*"))
	return sqlComment, text, nil
}

func isSQLNumberStart(c rune) bool {
	return (c >= '0' && c <= '9') || c == '.'
}

func isSQLWordChar(c rune) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '_'
}
