package handler

import (
	"io"
	"log/slog"
	"os"

	"github.com/sysu-ecnc-dev/training-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/training-manager/backend/internal/ingest"
	"github.com/sysu-ecnc-dev/training-manager/backend/internal/provision"
)

// bulkProvision 把上传内容写到临时文件里再逐行消费，
// 临时文件无论导入成功与否都恰好被删除一次
func (h *Handler) bulkProvision(upload io.Reader, role domain.Role) (*provision.BatchSummary, error) {
	tmp, err := os.CreateTemp("", "bulk-users-*.csv")
	if err != nil {
		return nil, err
	}
	defer func() {
		tmp.Close()
		if err := os.Remove(tmp.Name()); err != nil {
			slog.Error("无法删除临时文件", "path", tmp.Name(), "error", err)
		}
	}()

	if _, err := io.Copy(tmp, upload); err != nil {
		return nil, err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	stream, err := ingest.NewStream(tmp)
	if err != nil {
		return nil, err
	}

	summary, err := h.provisioner.ProvisionAll(stream, role)
	if err != nil {
		return nil, err
	}

	if stream.Skipped() > 0 {
		slog.Warn("导入时跳过了无法解析的行", "count", stream.Skipped())
	}

	return summary, nil
}
