package ingest

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/sysu-ecnc-dev/training-manager/backend/internal/domain"
)

func TestNewStream_MissingColumn(t *testing.T) {
	// 缺少 department 列
	csv := "Name,EmployeeId,Email\n张三,E000001,zhangsan@example.com\n"

	_, err := NewStream(strings.NewReader(csv))
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !errors.Is(err, domain.ErrMalformedFile) {
		t.Fatalf("expected ErrMalformedFile, got %v", err)
	}
}

func TestNewStream_EmptyFile(t *testing.T) {
	_, err := NewStream(strings.NewReader(""))
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !errors.Is(err, domain.ErrMalformedFile) {
		t.Fatalf("expected ErrMalformedFile, got %v", err)
	}
}

func TestStream_Next(t *testing.T) {
	csv := "Name,EmployeeId,Email,Department,PhoneNumber\n" +
		"张三,E000001,zhangsan@example.com,技术部,13800000000\n" +
		"李四,E000002,lisi@example.com,人事部,\n"

	stream, err := NewStream(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("NewStream error: %v", err)
	}

	record, err := stream.Next()
	if err != nil {
		t.Fatalf("Next error: %v", err)
	}
	if record["name"] != "张三" {
		t.Fatalf("expected name 张三, got %s", record["name"])
	}
	if record["email"] != "zhangsan@example.com" {
		t.Fatalf("expected email zhangsan@example.com, got %s", record["email"])
	}
	if record[PhoneColumn] != "13800000000" {
		t.Fatalf("expected phone 13800000000, got %s", record[PhoneColumn])
	}
	if stream.Line() != 2 {
		t.Fatalf("expected line 2, got %d", stream.Line())
	}

	record, err = stream.Next()
	if err != nil {
		t.Fatalf("Next error: %v", err)
	}
	if record["name"] != "李四" {
		t.Fatalf("expected name 李四, got %s", record["name"])
	}
	if record[PhoneColumn] != "" {
		t.Fatalf("expected empty phone, got %s", record[PhoneColumn])
	}
	if stream.Line() != 3 {
		t.Fatalf("expected line 3, got %d", stream.Line())
	}

	if _, err := stream.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestStream_SkipsUnparsableRow(t *testing.T) {
	// 第二行的引号不配对，无法解析，但序列应该继续
	csv := "Name,EmployeeId,Email,Department\n" +
		"张三,E000001,zhangsan@example.com,技术部\n" +
		"李四,\"E000002,lisi@example.com,人事部\n" +
		"王五,E000003,wangwu@example.com,市场部\n"

	stream, err := NewStream(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("NewStream error: %v", err)
	}

	names := []string{}
	for {
		record, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next error: %v", err)
		}
		names = append(names, record["name"])
	}

	if len(names) != 1 {
		t.Fatalf("expected 1 record, got %d: %v", len(names), names)
	}
	if names[0] != "张三" {
		t.Fatalf("expected 张三, got %s", names[0])
	}
	if stream.Skipped() == 0 {
		t.Fatalf("expected skipped rows to be counted")
	}
}

func TestStream_HeaderCaseInsensitive(t *testing.T) {
	csv := "NAME,EMPLOYEEID,EMAIL,DEPARTMENT\n张三,E000001,zhangsan@example.com,技术部\n"

	stream, err := NewStream(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("NewStream error: %v", err)
	}

	record, err := stream.Next()
	if err != nil {
		t.Fatalf("Next error: %v", err)
	}
	if record["employeeid"] != "E000001" {
		t.Fatalf("expected employeeid E000001, got %s", record["employeeid"])
	}
}
