// Package statement serializa el extracto de un lote como XML y calcula su digest
// sobre la forma canónica (C14N).
package statement

import (
	"bytes"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"
	"golang.org/x/crypto/blake2b"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
)

// ContentType tipo MIME del extracto.
const ContentType = "application/xml"

// DigestPrefix prefijo del algoritmo en el valor del digest.
const DigestPrefix = "blake2b-256="

// XMLRenderer implementa ledger.StatementRenderer.
type XMLRenderer struct{}

// NewXMLRenderer construye el renderer.
func NewXMLRenderer() *XMLRenderer { return &XMLRenderer{} }

// Render genera el documento y su digest.
func (r *XMLRenderer) Render(st *dto.LotStatement) (*dto.RenderedStatement, error) {
	if st == nil {
		return nil, fmt.Errorf("statement: extracto nil")
	}
	doc := etree.NewDocument()
	root := doc.CreateElement("LotStatement")
	root.CreateAttr("generatedAt", st.GeneratedAt.UTC().Format(time.RFC3339))

	lot := root.CreateElement("Lot")
	lot.CreateAttr("id", st.Lot.ID)
	lot.CreateAttr("state", st.Lot.State)
	lot.CreateElement("ProductID").SetText(st.Lot.ProductID)
	if st.Lot.Product != nil {
		lot.CreateElement("ProductName").SetText(st.Lot.Product.Name)
	}
	lot.CreateElement("LotNumber").SetText(st.Lot.LotNumber)
	lot.CreateElement("BatchNumber").SetText(st.Lot.BatchNumber)
	lot.CreateElement("HeatNumber").SetText(st.Lot.HeatNumber)
	lot.CreateElement("Location").SetText(st.Lot.Location)
	lot.CreateElement("SafetyStockLevel").SetText(st.Lot.SafetyStockLevel.String())

	entries := root.CreateElement("Entries")
	for _, e := range st.Entries {
		el := entries.CreateElement("Entry")
		el.CreateAttr("id", e.Transaction.ID)
		el.CreateAttr("type", e.Transaction.Type)
		el.CreateElement("Quantity").SetText(e.Transaction.Quantity.String())
		el.CreateElement("RunningBalance").SetText(e.RunningBalance.String())
		el.CreateElement("CreatedAt").SetText(e.Transaction.CreatedAt.UTC().Format(time.RFC3339Nano))
		el.CreateElement("CreatedBy").SetText(e.Transaction.CreatedBy)
		if e.Transaction.Remarks != "" {
			el.CreateElement("Remarks").SetText(e.Transaction.Remarks)
		}
	}

	totals := root.CreateElement("Totals")
	totals.CreateElement("In").SetText(st.TotalIn.String())
	totals.CreateElement("Out").SetText(st.TotalOut.String())
	totals.CreateElement("Balance").SetText(st.Lot.AvailableQuantity.String())

	body, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("statement: serializar XML: %w", err)
	}
	digest, err := Digest(body)
	if err != nil {
		return nil, err
	}
	return &dto.RenderedStatement{Body: body, ContentType: ContentType, Digest: digest}, nil
}

// Digest BLAKE2b-256 de la forma canónica del documento, en hex con prefijo de algoritmo.
func Digest(body []byte) (string, error) {
	canonical, err := canonicalizeXML(body)
	if err != nil {
		return "", fmt.Errorf("statement: canonicalizar XML: %w", err)
	}
	sum := blake2b.Sum256(canonical)
	return DigestPrefix + hex.EncodeToString(sum[:]), nil
}

func canonicalizeXML(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}
