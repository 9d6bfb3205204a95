package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ricazo/pos-engine/internal/application/ports"
	"github.com/ricazo/pos-engine/internal/domain"
	"github.com/ricazo/pos-engine/internal/domain/entity"
	invdomain "github.com/ricazo/pos-engine/internal/domain/inventory"
	"github.com/ricazo/pos-engine/internal/domain/repository"
	"github.com/ricazo/pos-engine/pkg/logger"
)

// UseCase libro de inventario: saldo por unidad+producto y registro append-only de movimientos.
// Todo cambio de saldo pasa por StockRepository.ApplyDelta y deja su movimiento en la misma transacción.
type UseCase struct {
	txRunner  ports.TxRunner
	stock     repository.StockRepository
	movements repository.StockMovementRepository
	catalog   repository.CatalogSnapshot
	log       *logger.Logger
	now       ports.Clock
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner ports.TxRunner,
	stock repository.StockRepository,
	movements repository.StockMovementRepository,
	catalog repository.CatalogSnapshot,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:  txRunner,
		stock:     stock,
		movements: movements,
		catalog:   catalog,
		log:       log.Component("inventory"),
		now:       ports.SystemClock,
	}
}

// WithClock reemplaza la fuente de tiempo (tests).
func (uc *UseCase) WithClock(c ports.Clock) *UseCase {
	uc.now = c
	return uc
}

// MovementInput datos comunes de entradas y bajas.
type MovementInput struct {
	UnitID    string
	ProductID string
	Quantity  decimal.Decimal
	Note      string // motivo en bajas
	Actor     string
}

// TransferInput envío de mercadería entre unidades.
type TransferInput struct {
	FromUnitID string
	ToUnitID   string
	ProductID  string
	Quantity   decimal.Decimal
	Note       string
	Actor      string
}

// Transfer resultado de una transferencia: dos movimientos que se referencian entre sí.
type Transfer struct {
	ID  string
	Out *entity.StockMovement
	In  *entity.StockMovement
}

// Discrepancy par (unidad, producto) cuyo saldo no coincide con la suma de sus movimientos.
type Discrepancy struct {
	UnitID        string
	ProductID     string
	Balance       decimal.Decimal
	MovementTotal decimal.Decimal
}

// DecrementForSale descuenta del stock lo vendido en una cuenta, dentro de la transacción del llamador.
// products debe contener todas las líneas; los combos se descomponen en sus componentes.
func (uc *UseCase) DecrementForSale(
	ctx context.Context,
	repos ports.TxRepos,
	unitID string,
	lines []entity.LineItem,
	products map[string]entity.Product,
	actor, reference string,
) ([]*entity.StockMovement, error) {
	decrements, err := invdomain.Explode(lines, products)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	out := make([]*entity.StockMovement, 0, len(decrements))
	for _, d := range decrements {
		note := ""
		if d.SourceProductID != d.ProductID {
			note = "combo " + d.SourceProductID
		}
		mov, err := uc.apply(ctx, repos, movementDraft{
			unitID:    unitID,
			productID: d.ProductID,
			kind:      entity.MovementKindSale,
			delta:     d.Delta,
			actor:     actor,
			note:      note,
			reference: reference,
			at:        now,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, mov)
	}
	return out, nil
}

// ReceiveEntry registra una entrada (producción propia o compra) en la unidad.
func (uc *UseCase) ReceiveEntry(ctx context.Context, in MovementInput) (*entity.StockMovement, error) {
	if err := uc.validateMovement(ctx, in.UnitID, in.ProductID, in.Quantity, in.Actor); err != nil {
		return nil, err
	}
	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		var err error
		mov, err = uc.apply(ctx, repos, movementDraft{
			unitID:    in.UnitID,
			productID: in.ProductID,
			kind:      entity.MovementKindEntry,
			delta:     in.Quantity,
			actor:     in.Actor,
			note:      in.Note,
			at:        uc.now(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// DiscardStock registra una baja (perda). A diferencia de la venta, no puede superar el saldo actual.
func (uc *UseCase) DiscardStock(ctx context.Context, in MovementInput) (*entity.StockMovement, error) {
	if err := uc.validateMovement(ctx, in.UnitID, in.ProductID, in.Quantity, in.Actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Note) == "" {
		return nil, domain.Invalid("reason", "requerido")
	}
	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		// Bloquea la fila del saldo para que la verificación y el descuento no se intercalen con otra terminal
		current := decimal.Zero
		bal, err := repos.Stock.GetForUpdate(ctx, in.UnitID, in.ProductID)
		switch {
		case err == nil:
			current = bal.Quantity
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}
		if in.Quantity.GreaterThan(current) {
			return domain.Invalid("quantity", fmt.Sprintf("la baja (%s) supera el saldo actual (%s)", in.Quantity, current))
		}
		mov, err = uc.apply(ctx, repos, movementDraft{
			unitID:    in.UnitID,
			productID: in.ProductID,
			kind:      entity.MovementKindDiscard,
			delta:     in.Quantity.Neg(),
			actor:     in.Actor,
			note:      in.Note,
			at:        uc.now(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// ReceiveTransfer registra la salida en la unidad de origen y la entrada en la de destino.
// Cada pata es una transacción independiente (agregados distintos); ambas comparten el id de
// transferencia y apuntan al movimiento y unidad de la otra. La salida no está acotada por el saldo.
func (uc *UseCase) ReceiveTransfer(ctx context.Context, in TransferInput) (*Transfer, error) {
	if strings.TrimSpace(in.FromUnitID) == "" {
		return nil, domain.Invalid("from_unit_id", "requerido")
	}
	if err := uc.validateMovement(ctx, in.ToUnitID, in.ProductID, in.Quantity, in.Actor); err != nil {
		return nil, err
	}
	if in.FromUnitID == in.ToUnitID {
		return nil, domain.Invalid("to_unit_id", "origen y destino deben ser distintos")
	}

	tr := &Transfer{ID: uuid.New().String()}
	outID, inID := uuid.New().String(), uuid.New().String()
	now := uc.now()

	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		var err error
		tr.Out, err = uc.apply(ctx, repos, movementDraft{
			id:                    outID,
			unitID:                in.FromUnitID,
			productID:             in.ProductID,
			kind:                  entity.MovementKindTransferOut,
			delta:                 in.Quantity.Neg(),
			actor:                 in.Actor,
			note:                  in.Note,
			at:                    now,
			transferID:            tr.ID,
			counterpartUnitID:     in.ToUnitID,
			counterpartMovementID: inID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	err = uc.txRunner.Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		var err error
		tr.In, err = uc.apply(ctx, repos, movementDraft{
			id:                    inID,
			unitID:                in.ToUnitID,
			productID:             in.ProductID,
			kind:                  entity.MovementKindTransferIn,
			delta:                 in.Quantity,
			actor:                 in.Actor,
			note:                  in.Note,
			at:                    now,
			transferID:            tr.ID,
			counterpartUnitID:     in.FromUnitID,
			counterpartMovementID: outID,
		})
		return err
	})
	if err != nil {
		uc.log.Error().Err(err).
			Str("transfer_id", tr.ID).
			Str("from_unit", in.FromUnitID).
			Str("to_unit", in.ToUnitID).
			Str("product_id", in.ProductID).
			Msg("salida registrada pero la entrada en destino falló")
		return tr, fmt.Errorf("transferencia %s incompleta: %w: %w", tr.ID, domain.ErrPersistence, err)
	}
	return tr, nil
}

// ListBalances saldos de la unidad (pueden ser negativos: venta sin tope de stock).
func (uc *UseCase) ListBalances(ctx context.Context, unitID string) ([]*entity.StockBalance, error) {
	if strings.TrimSpace(unitID) == "" {
		return nil, domain.Invalid("unit_id", "requerido")
	}
	return uc.stock.ListByUnit(ctx, unitID)
}

// ListMovements movimientos según el filtro (límite por defecto 100).
func (uc *UseCase) ListMovements(ctx context.Context, f entity.MovementFilter) ([]*entity.StockMovement, error) {
	if f.Kind != "" && !entity.ValidMovementKind(f.Kind) {
		return nil, domain.Invalid("kind", fmt.Sprintf("tipo de movimiento desconocido %q", f.Kind))
	}
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return uc.movements.List(ctx, f)
}

// CheckConsistency compara cada saldo de la unidad con la suma de sus movimientos.
func (uc *UseCase) CheckConsistency(ctx context.Context, unitID string) ([]Discrepancy, error) {
	balances, err := uc.ListBalances(ctx, unitID)
	if err != nil {
		return nil, err
	}
	sums, err := uc.movements.SumDeltas(ctx, unitID)
	if err != nil {
		return nil, err
	}
	var out []Discrepancy
	seen := make(map[string]bool, len(balances))
	for _, b := range balances {
		seen[b.ProductID] = true
		if !b.Quantity.Equal(sums[b.ProductID]) {
			out = append(out, Discrepancy{UnitID: unitID, ProductID: b.ProductID, Balance: b.Quantity, MovementTotal: sums[b.ProductID]})
		}
	}
	for productID, total := range sums {
		if !seen[productID] && !total.IsZero() {
			out = append(out, Discrepancy{UnitID: unitID, ProductID: productID, Balance: decimal.Zero, MovementTotal: total})
		}
	}
	return out, nil
}

type movementDraft struct {
	id                    string
	unitID                string
	productID             string
	kind                  string
	delta                 decimal.Decimal
	actor                 string
	note                  string
	reference             string
	at                    time.Time
	transferID            string
	counterpartUnitID     string
	counterpartMovementID string
}

// apply suma el delta de forma atómica y registra el movimiento con el saldo anterior y posterior.
func (uc *UseCase) apply(ctx context.Context, repos ports.TxRepos, mv movementDraft) (*entity.StockMovement, error) {
	after, err := repos.Stock.ApplyDelta(ctx, mv.unitID, mv.productID, mv.delta, mv.at)
	if err != nil {
		return nil, err
	}
	if mv.id == "" {
		mv.id = uuid.New().String()
	}
	mov := &entity.StockMovement{
		ID:                    mv.id,
		UnitID:                mv.unitID,
		ProductID:             mv.productID,
		Kind:                  mv.kind,
		Delta:                 mv.delta,
		BalanceBefore:         after.Sub(mv.delta),
		BalanceAfter:          after,
		Actor:                 mv.actor,
		CreatedAt:             mv.at,
		Note:                  mv.note,
		Reference:             mv.reference,
		TransferID:            mv.transferID,
		CounterpartUnitID:     mv.counterpartUnitID,
		CounterpartMovementID: mv.counterpartMovementID,
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// validateMovement valida cantidad y producto; los combos no tienen stock propio.
func (uc *UseCase) validateMovement(ctx context.Context, unitID, productID string, qty decimal.Decimal, actor string) error {
	if strings.TrimSpace(unitID) == "" {
		return domain.Invalid("unit_id", "requerido")
	}
	if strings.TrimSpace(productID) == "" {
		return domain.Invalid("product_id", "requerido")
	}
	if strings.TrimSpace(actor) == "" {
		return domain.Invalid("actor", "requerido")
	}
	if !qty.IsPositive() {
		return domain.Invalid("quantity", "debe ser mayor que cero")
	}
	p, err := uc.catalog.GetProduct(ctx, unitID, productID)
	if err != nil {
		return err
	}
	return ValidateQuantity(p, qty)
}

// ValidateQuantity exige cantidades enteras para productos por unidad y rechaza combos.
func ValidateQuantity(p entity.Product, qty decimal.Decimal) error {
	if _, ok := p.(*entity.ComboProduct); ok {
		return domain.Invalid("product_id", "un combo no tiene stock propio; mueva sus componentes")
	}
	if p.Pricing() == entity.PricingModeUnit && !qty.IsInteger() {
		return domain.Invalid("quantity", "los productos por unidad requieren cantidades enteras")
	}
	return nil
}
