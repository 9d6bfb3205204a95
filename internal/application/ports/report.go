package ports

import "github.com/ricazo/pos-engine/internal/domain/entity"

// ZReportRenderer genera la versión imprimible del arqueo de cierre.
type ZReportRenderer interface {
	Render(report *entity.AuditReport) ([]byte, error)
}
