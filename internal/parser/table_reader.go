package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat 不支持的文件类型
var ErrUnsupportedFormat = errors.New("unsupported file type: expected .xlsx, .xlsm or .csv")

// ErrEmptyTable 文件中没有表头
var ErrEmptyTable = errors.New("table has no header row")

// FileFormat 表格文件格式
type FileFormat string

const (
	FormatXLSX FileFormat = "xlsx"
	FormatCSV  FileFormat = "csv"
)

// DetectFormat 根据扩展名判断格式
func DetectFormat(filename string) (FileFormat, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", ErrUnsupportedFormat
}

// ReadTable 读取表格文件；sheet 为空时读取第一个 Sheet（CSV 忽略该参数）
func ReadTable(r io.Reader, format FileFormat, sheet string) (*Table, error) {
	switch format {
	case FormatXLSX:
		file, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open excel: %w", err)
		}
		defer file.Close()
		return ReadWorkbookTable(file, sheet)
	case FormatCSV:
		return ReadCSVTable(r)
	}
	return nil, ErrUnsupportedFormat
}

// ReadWorkbookTable 从已打开的工作簿读取一个 Sheet
func ReadWorkbookTable(file *excelize.File, sheet string) (*Table, error) {
	if sheet == "" {
		sheets := file.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptyTable
		}
		sheet = sheets[0]
	}

	// 读取原始值，不套用单元格数字格式
	rows, err := file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}

	return &Table{
		SheetName: sheet,
		Headers:   rows[0],
		Rows:      rows[1:],
	}, nil
}

// ReadCSVTable 读取 CSV；分隔符在 ',' ';' '\t' 中自动识别
func ReadCSVTable(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyTable
	}

	return &Table{
		Headers: records[0],
		Rows:    records[1:],
	}, nil
}

// detectDelimiter 以首行中出现次数最多的候选分隔符为准
func detectDelimiter(data []byte) rune {
	firstLine := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		firstLine = data[:idx]
	}
	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if c := bytes.Count(firstLine, []byte(string(d))); c > bestCount {
			best, bestCount = d, c
		}
	}
	return best
}
