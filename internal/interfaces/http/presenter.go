package http

import (
	"github.com/ricazo/pos-engine/internal/application/dto"
	"github.com/ricazo/pos-engine/internal/application/inventory"
	"github.com/ricazo/pos-engine/internal/application/payment"
	"github.com/ricazo/pos-engine/internal/domain/entity"
	"github.com/ricazo/pos-engine/internal/domain/settlement"
)

func toShiftResponse(s *entity.Shift) dto.ShiftResponse {
	return dto.ShiftResponse{
		ID:                  s.ID,
		UnitID:              s.UnitID,
		Status:              s.Status,
		OpenedBy:            s.OpenedBy,
		OpenedAt:            s.OpenedAt,
		OpeningFloat:        s.OpeningFloat,
		CloseRequestedAt:    s.CloseRequestedAt,
		ClosedBy:            s.ClosedBy,
		ClosedAt:            s.ClosedAt,
		DeclaredCash:        s.DeclaredCash,
		ExpectedCash:        s.ExpectedCash,
		CashVariance:        s.CashVariance,
		NetRevenue:          s.NetRevenue,
		TenderBreakdown:     s.TenderBreakdown,
		SettledTicketIDs:    s.SettledTicketIDs,
		UntenderedTicketIDs: s.UntenderedTicketIDs,
	}
}

func toReportResponse(r *entity.AuditReport) dto.AuditReportResponse {
	breakdown := make([]dto.TenderTotalDTO, 0, len(r.TenderBreakdown))
	for _, t := range r.TenderBreakdown {
		breakdown = append(breakdown, dto.TenderTotalDTO{Method: t.Method, Amount: t.Amount, IsCash: t.IsCash})
	}
	settled := r.SettledTicketIDs
	if settled == nil {
		settled = []string{}
	}
	return dto.AuditReportResponse{
		ShiftID:             r.ShiftID,
		UnitID:              r.UnitID,
		OpenedBy:            r.OpenedBy,
		ClosedBy:            r.ClosedBy,
		OpenedAt:            r.OpenedAt,
		ClosedAt:            r.ClosedAt,
		OpeningFloat:        r.OpeningFloat,
		TenderBreakdown:     breakdown,
		CashTotal:           r.CashTotal,
		ExpectedCash:        r.ExpectedCash,
		DeclaredCash:        r.DeclaredCash,
		CashVariance:        r.CashVariance,
		VarianceKind:        r.VarianceKind(),
		NetRevenue:          r.NetRevenue,
		SettledTicketIDs:    settled,
		UntenderedTicketIDs: r.UntenderedTicketIDs,
		Digest:              r.Digest,
	}
}

func toTicketResponse(t *entity.Ticket) dto.TicketResponse {
	items := make([]dto.LineItemResponse, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, dto.LineItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			PricingMode: it.PricingMode,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
			EnteredBy:   it.EnteredBy,
			EnteredAt:   it.EnteredAt,
		})
	}
	return dto.TicketResponse{
		ID:                    t.ID,
		UnitID:                t.UnitID,
		Kind:                  t.Kind,
		TableRef:              t.TableRef,
		Status:                t.Status,
		OpenedBy:              t.OpenedBy,
		OpenedAt:              t.OpenedAt,
		ServiceChargePercent:  t.ServiceChargePercent,
		Subtotal:              t.Subtotal,
		ServiceCharge:         t.ServiceCharge,
		Total:                 t.Total,
		RequestedSettlement:   t.RequestedSettlement,
		SettlementRequestedAt: t.SettlementRequestedAt,
		ClosedBy:              t.ClosedBy,
		ClosedAt:              t.ClosedAt,
		Items:                 items,
	}
}

func toStateResponse(s settlement.State) dto.SettlementStateResponse {
	return dto.SettlementStateResponse{
		Due:         s.Due,
		Tendered:    s.Tendered,
		Balance:     s.Balance,
		Change:      s.Change,
		Status:      string(s.Status),
		CanFinalize: s.CanFinalize(),
	}
}

func toSettlementResponse(s *payment.Settlement) dto.SettlementResponse {
	tenders := make([]dto.TenderResponse, 0, len(s.Tenders))
	for _, t := range s.Tenders {
		tenders = append(tenders, dto.TenderResponse{
			ID:          t.ID,
			MethodID:    t.MethodID,
			MethodName:  t.MethodName,
			Amount:      t.Amount,
			ChangeGiven: t.ChangeGiven,
			CollectedBy: t.CollectedBy,
			CollectedAt: t.CollectedAt,
		})
	}
	return dto.SettlementResponse{
		Ticket:    toTicketResponse(s.Ticket),
		Tenders:   tenders,
		Movements: toMovementResponses(s.Movements),
		State:     toStateResponse(s.State),
	}
}

func toMovementResponse(m *entity.StockMovement) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		ID:                    m.ID,
		UnitID:                m.UnitID,
		ProductID:             m.ProductID,
		Kind:                  m.Kind,
		Delta:                 m.Delta,
		BalanceBefore:         m.BalanceBefore,
		BalanceAfter:          m.BalanceAfter,
		Actor:                 m.Actor,
		CreatedAt:             m.CreatedAt,
		Note:                  m.Note,
		Reference:             m.Reference,
		TransferID:            m.TransferID,
		CounterpartUnitID:     m.CounterpartUnitID,
		CounterpartMovementID: m.CounterpartMovementID,
	}
}

func toMovementResponses(ms []*entity.StockMovement) []dto.StockMovementResponse {
	out := make([]dto.StockMovementResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, toMovementResponse(m))
	}
	return out
}

func toTransferResponse(tr *inventory.Transfer) dto.TransferResponse {
	out := dto.TransferResponse{ID: tr.ID}
	if tr.Out != nil {
		out.Out = toMovementResponse(tr.Out)
	}
	if tr.In != nil {
		out.In = toMovementResponse(tr.In)
	}
	return out
}
