package catalog

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "github.com/lib/pq"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	_ "modernc.org/sqlite"
)

// Load 根据来源字符串选择加载方式：
// postgres:// 或 postgresql:// 走 PostgreSQL，sqlite: 前缀走 SQLite 文件，其他视为 CSV/TSV 路径
func Load(ctx context.Context, source string, opts Options) (*Catalog, error) {
	switch {
	case strings.HasPrefix(source, "postgres://"), strings.HasPrefix(source, "postgresql://"):
		return loadDB(ctx, "postgres", source, source, opts)
	case strings.HasPrefix(source, "sqlite:"):
		path := strings.TrimPrefix(strings.TrimPrefix(source, "sqlite:"), "//")
		if _, err := os.Stat(path); err != nil {
			return nil, &LoadError{Kind: SourceNotFound, Source: source, Err: err}
		}
		return loadDB(ctx, "sqlite", path, source, opts)
	default:
		return LoadCSV(source, opts)
	}
}

// LoadCSV 加载 CSV（.tsv 扩展名按制表符分隔），自动去掉 UTF-8 BOM
func LoadCSV(path string, opts Options) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &LoadError{Kind: SourceNotFound, Source: path, Err: err}
		}
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	comma := ','
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		comma = '\t'
	}
	return ReadCSV(f, path, comma, opts)
}

// ReadCSV 从 reader 读取目录，source 只用于错误信息
func ReadCSV(r io.Reader, source string, comma rune, opts Options) (*Catalog, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(decoded)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &LoadError{Kind: MissingColumns, Source: source, Missing: []string{
			columnLabel(opts.NameColumn, "name"), columnLabel(opts.MetricColumn, "metric"),
		}}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}

	b, err := newBuilder(source, header, opts)
	if err != nil {
		return nil, err
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog row: %w", err)
		}
		b.addRow(row)
	}
	return b.cat, nil
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// LoadSQL 从已打开的数据库读取整张表，列名识别规则与 CSV 相同
func LoadSQL(ctx context.Context, db *sql.DB, source string, opts Options) (*Catalog, error) {
	table := opts.Table
	if table == "" {
		table = "journals"
	}
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid catalog table name %q", table)
	}

	rows, err := db.QueryContext(ctx, "SELECT * FROM "+table)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog table: %w", err)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog columns: %w", err)
	}

	b, err := newBuilder(source, header, opts)
	if err != nil {
		return nil, err
	}

	values := make([]sql.NullString, len(header))
	dest := make([]any, len(header))
	for i := range values {
		dest[i] = &values[i]
	}
	row := make([]string, len(header))

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		for i, v := range values {
			row[i] = v.String // NULL -> ""，按缺失处理
		}
		b.addRow(row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate catalog rows: %w", err)
	}
	return b.cat, nil
}

func loadDB(ctx context.Context, driver, dsn, source string, opts Options) (*Catalog, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return LoadSQL(ctx, db, source, opts)
}
