package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"nutriplan/internal/model"
	"nutriplan/internal/parser"
	"nutriplan/internal/service/store"
)

// ErrUnknownSheet 无法判断表格是食物表还是 RDA 表
var ErrUnknownSheet = errors.New("cannot determine table kind: expected a FoodName or ProfileName column")

// ErrFileTooLarge 上传文件超过大小上限
var ErrFileTooLarge = errors.New("uploaded file exceeds size limit")

// DefaultMaxBytes 默认上传大小上限
const DefaultMaxBytes int64 = 20 << 20

// LogSink 导入日志记录
type LogSink interface {
	CreateImportLog(id, kind, filename string) error
	UpdateImportLog(id, sheetName, archiveURL string, totalRows, importedRows, skippedRows int, status, errorMessage string) error
	SetMeta(key, value string) error
}

// Archiver 原始文件归档
type Archiver interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// Coordinator 导入协调器
type Coordinator struct {
	store      store.ReferenceStore
	normalizer *parser.Normalizer
	recognizer *parser.SheetRecognizer
	logs       LogSink
	archive    Archiver
	maxBytes   int64
}

// NewCoordinator 创建导入协调器
func NewCoordinator(store store.ReferenceStore) *Coordinator {
	return &Coordinator{
		store:      store,
		normalizer: parser.NewNormalizer(),
		recognizer: parser.NewSheetRecognizer(),
		maxBytes:   DefaultMaxBytes,
	}
}

// WithMaxBytes 设置上传大小上限；n <= 0 时保持默认值
func (c *Coordinator) WithMaxBytes(n int64) *Coordinator {
	if n > 0 {
		c.maxBytes = n
	}
	return c
}

// WithImportLog 设置导入日志
func (c *Coordinator) WithImportLog(sink LogSink) *Coordinator {
	c.logs = sink
	return c
}

// WithArchive 设置归档
func (c *Coordinator) WithArchive(a Archiver) *Coordinator {
	c.archive = a
	return c
}

// ImportOptions 导入选项
type ImportOptions struct {
	Kind     model.RecordKind // 为空时根据表头自动识别
	Filename string
	Reader   io.Reader
	Sheet    string // 为空时读取第一个 Sheet
	Progress chan<- ProgressEvent
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`      // start/info/done/error
	Message   string      `json:"message"`   // 事件消息
	Data      interface{} `json:"data"`      // 附加数据
	Timestamp time.Time   `json:"timestamp"` // 时间戳
}

// Import 执行导入：读取表头、整批校验、逐行归一化、一次性写入
// 任一步骤失败则存储保持不变
func (c *Coordinator) Import(ctx context.Context, opts ImportOptions) (*parser.ImportReport, error) {
	startTime := time.Now()
	report := &parser.ImportReport{
		ID:       uuid.NewString(),
		Filename: filepath.Base(opts.Filename),
		Kind:     opts.Kind,
		Status:   "processing",
	}

	c.sendProgress(opts.Progress, ProgressEvent{
		Type:    "start",
		Message: fmt.Sprintf("开始导入 %s", report.Filename),
		Data: map[string]string{
			"id":       report.ID,
			"filename": report.Filename,
		},
		Timestamp: time.Now(),
	})
	if report.Kind != "" {
		c.startLog(report)
	}

	format, err := parser.DetectFormat(opts.Filename)
	if err != nil {
		return c.fail(opts, report, startTime, err)
	}

	data, err := io.ReadAll(io.LimitReader(opts.Reader, c.maxBytes+1))
	if err != nil {
		return c.fail(opts, report, startTime, fmt.Errorf("failed to read upload: %w", err))
	}
	if int64(len(data)) > c.maxBytes {
		return c.fail(opts, report, startTime, fmt.Errorf("%w (%d bytes)", ErrFileTooLarge, c.maxBytes))
	}

	table, err := parser.ReadTable(bytes.NewReader(data), format, opts.Sheet)
	if err != nil {
		return c.fail(opts, report, startTime, err)
	}
	report.SheetName = table.SheetName

	if report.Kind == "" {
		recognition := c.recognizer.Recognize(table.SheetName, table.Headers)
		kind, ok := recognition.SheetType.RecordKind()
		if !ok {
			return c.fail(opts, report, startTime, ErrUnknownSheet)
		}
		report.Kind = kind
		c.startLog(report)

		c.sendProgress(opts.Progress, ProgressEvent{
			Type:    "info",
			Message: fmt.Sprintf("表格识别为: %s (置信度: %.2f)", recognition.SheetType, recognition.Confidence),
			Data: map[string]interface{}{
				"sheet_name": table.SheetName,
				"sheet_type": recognition.SheetType,
				"confidence": recognition.Confidence,
			},
			Timestamp: time.Now(),
		})
	}

	batch, err := c.normalizer.NormalizeTable(report.Kind, table)
	if err != nil {
		return c.fail(opts, report, startTime, err)
	}
	report.TotalRows = batch.TotalRows
	report.SkippedRows = batch.SkippedRows

	c.sendProgress(opts.Progress, ProgressEvent{
		Type:    "info",
		Message: fmt.Sprintf("解析完成，共 %d 条记录", batch.Len()),
		Data: map[string]interface{}{
			"rows":    batch.Len(),
			"skipped": batch.SkippedRows,
		},
		Timestamp: time.Now(),
	})

	switch report.Kind {
	case model.KindFood:
		err = c.store.UpsertFoods(batch.Foods)
	case model.KindRda:
		err = c.store.UpsertRdaProfiles(batch.Profiles)
	}
	if err != nil {
		return c.fail(opts, report, startTime, fmt.Errorf("failed to store %s: %w", report.Kind, err))
	}
	report.ImportedRows = batch.Len()

	// 归档失败不影响导入结果
	if c.archive != nil {
		key := fmt.Sprintf("%s/%s-%s", report.Kind, report.ID, report.Filename)
		url, err := c.archive.Put(ctx, key, bytes.NewReader(data), contentType(format))
		if err != nil {
			log.Printf("归档上传文件失败: %v", err)
		} else {
			report.ArchiveURL = url
		}
	}

	report.Status = "imported"
	report.Duration = time.Since(startTime)
	c.finishLog(report, "")

	c.sendProgress(opts.Progress, ProgressEvent{
		Type:      "done",
		Message:   "导入完成",
		Data:      report,
		Timestamp: time.Now(),
	})

	return report, nil
}

// fail 记录失败并返回原始错误
func (c *Coordinator) fail(opts ImportOptions, report *parser.ImportReport, startTime time.Time, err error) (*parser.ImportReport, error) {
	report.Status = "error"
	report.ImportedRows = 0
	report.Errors = append(report.Errors, err.Error())
	report.Duration = time.Since(startTime)
	c.finishLog(report, err.Error())

	c.sendProgress(opts.Progress, ProgressEvent{
		Type:      "error",
		Message:   fmt.Sprintf("导入失败: %v", err),
		Data:      report,
		Timestamp: time.Now(),
	})
	return report, err
}

func (c *Coordinator) startLog(report *parser.ImportReport) {
	if c.logs == nil {
		return
	}
	if err := c.logs.CreateImportLog(report.ID, string(report.Kind), report.Filename); err != nil {
		log.Printf("创建导入日志失败: %v", err)
	}
}

// finishLog 更新导入日志；只有已创建日志（类型已知）时才写入
func (c *Coordinator) finishLog(report *parser.ImportReport, errMsg string) {
	if c.logs == nil || report.Kind == "" {
		return
	}
	if err := c.logs.UpdateImportLog(
		report.ID, report.SheetName, report.ArchiveURL,
		report.TotalRows, report.ImportedRows, report.SkippedRows,
		report.Status, errMsg,
	); err != nil {
		log.Printf("更新导入日志失败: %v", err)
	}
	if report.Status == "imported" {
		if err := c.logs.SetMeta("last_import_"+string(report.Kind), time.Now().Format(time.RFC3339)); err != nil {
			log.Printf("记录导入时间失败: %v", err)
		}
	}
}

func contentType(format parser.FileFormat) string {
	if format == parser.FormatCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// sendProgress 发送进度事件
func (c *Coordinator) sendProgress(ch chan<- ProgressEvent, event ProgressEvent) {
	if ch == nil {
		return
	}
	select {
	case ch <- event:
	default:
		// 通道已满，丢弃事件
	}
}
