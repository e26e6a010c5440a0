package backend

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gimenezlucas594-sudo/stocking-app/pkg/models"
)

// Wire shapes of the external service. Field names follow the backend's
// Spanish schema; mapping to engine types happens only here.

type productDTO struct {
	ID           int64           `json:"id"`
	Nombre       string          `json:"nombre"`
	CodigoBarras string          `json:"codigo_barras"`
	Precio       decimal.Decimal `json:"precio"`
	Stock        decimal.Decimal `json:"stock"`
	Categoria    string          `json:"categoria"`
	TipoVenta    string          `json:"tipo_venta"`
}

func (d productDTO) toProduct() models.Product {
	mode := models.PricingUnit
	if d.TipoVenta == "peso" {
		mode = models.PricingWeight
	}
	return models.Product{
		ID:          d.ID,
		Name:        d.Nombre,
		Barcode:     d.CodigoBarras,
		PricingMode: mode,
		UnitPrice:   d.Precio,
		Stock:       d.Stock,
		Category:    d.Categoria,
	}
}

type commitItem struct {
	ProductoID int64           `json:"producto_id"`
	Cantidad   decimal.Decimal `json:"cantidad"`
}

type commitRequest struct {
	Items            []commitItem    `json:"items"`
	MedioPago        string          `json:"medio_pago"`
	MontoEfectivo    decimal.Decimal `json:"monto_efectivo"`
	MontoTarjeta     decimal.Decimal `json:"monto_tarjeta"`
	MontoMercadopago decimal.Decimal `json:"monto_mercadopago"`
}

func newCommitRequest(cart models.Cart, tender models.TenderSplit) commitRequest {
	items := make([]commitItem, len(cart.Lines))
	for i, line := range cart.Lines {
		items[i] = commitItem{ProductoID: line.ProductID, Cantidad: line.Quantity}
	}
	return commitRequest{
		Items:            items,
		MedioPago:        wireMode(tender.Mode),
		MontoEfectivo:    tender.CashAmount.Round(2),
		MontoTarjeta:     tender.CardAmount.Round(2),
		MontoMercadopago: tender.WalletAmount.Round(2),
	}
}

func wireMode(mode models.TenderMode) string {
	switch mode {
	case models.TenderCard:
		return "tarjeta"
	case models.TenderWallet:
		return "mercadopago"
	case models.TenderMixed:
		return "mixto"
	default:
		return "efectivo"
	}
}

func engineMode(wire string) models.TenderMode {
	switch wire {
	case "tarjeta":
		return models.TenderCard
	case "mercadopago":
		return models.TenderWallet
	case "mixto":
		return models.TenderMixed
	default:
		return models.TenderCash
	}
}

type saleItemDTO struct {
	ProductoID     int64           `json:"producto_id"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type saleDTO struct {
	ID               int64           `json:"id"`
	Total            decimal.Decimal `json:"total"`
	Items            []saleItemDTO   `json:"items"`
	MedioPago        string          `json:"medio_pago"`
	MontoEfectivo    decimal.Decimal `json:"monto_efectivo"`
	MontoTarjeta     decimal.Decimal `json:"monto_tarjeta"`
	MontoMercadopago decimal.Decimal `json:"monto_mercadopago"`
	CreatedAt        time.Time       `json:"created_at"`
}

func (d saleDTO) toSale() models.Sale {
	items := make([]models.SaleItem, len(d.Items))
	for i, it := range d.Items {
		items[i] = models.SaleItem{
			ProductID: it.ProductoID,
			Quantity:  it.Cantidad,
			UnitPrice: it.PrecioUnitario,
			Subtotal:  it.Subtotal,
		}
	}
	return models.Sale{
		ID:    d.ID,
		Items: items,
		Total: d.Total,
		Tender: models.TenderSplit{
			Mode:         engineMode(d.MedioPago),
			CashAmount:   d.MontoEfectivo,
			CardAmount:   d.MontoTarjeta,
			WalletAmount: d.MontoMercadopago,
		},
		CreatedAt: d.CreatedAt,
	}
}
