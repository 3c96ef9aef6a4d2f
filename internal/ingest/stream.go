package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/sysu-ecnc-dev/training-manager/backend/internal/domain"
)

// Record 是 CSV 文件中的一行，键是小写的列名
type Record map[string]string

// RequiredColumns 是上传文件中必须出现的列
var RequiredColumns = []string{"name", "employeeid", "email", "department"}

// PhoneColumn 是可选的手机号列
const PhoneColumn = "phonenumber"

// Stream 把 CSV 文件包装成一个惰性的、有限的、不可重放的记录序列，
// 格式错误的行会被跳过并计数，整个序列不会因为单行错误而中断
type Stream struct {
	reader  *csv.Reader
	columns []string
	line    int // 最近一次返回的记录在文件中的行号（表头是第 1 行）
	skipped int
}

func NewStream(r io.Reader) (*Stream, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	// 表头无法读取说明整个文件无法解析
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: 无法读取表头: %v", domain.ErrMalformedFile, err)
	}

	columns := make([]string, len(header))
	for i, col := range header {
		columns[i] = strings.ToLower(strings.TrimSpace(col))
	}

	for _, required := range RequiredColumns {
		found := false
		for _, col := range columns {
			if col == required {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: 缺少必需的列 %s", domain.ErrMalformedFile, required)
		}
	}

	return &Stream{
		reader:  reader,
		columns: columns,
		line:    1,
	}, nil
}

// Next 返回下一条格式正确的记录，序列结束时返回 io.EOF，
// 文件整体无法继续解析时返回 ErrMalformedFile
func (s *Stream) Next() (Record, error) {
	for {
		row, err := s.reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			s.line++

			// 单行的解析错误只跳过这一行，序列继续
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				s.skipped++
				slog.Warn("跳过无法解析的行", "line", s.line, "error", err)
				continue
			}

			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedFile, err)
		}

		s.line++
		record := make(Record, len(s.columns))
		for i, col := range s.columns {
			if i < len(row) {
				record[col] = strings.TrimSpace(row[i])
			}
		}

		return record, nil
	}
}

// Line 返回最近一次 Next 返回的记录所在的行号
func (s *Stream) Line() int {
	return s.line
}

// Skipped 返回因为无法解析而被跳过的行数
func (s *Stream) Skipped() int {
	return s.skipped
}
