package engine

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/decimal128"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"
)

// revenueScale is the number of fractional digits kept in the Arrow revenue column.
const revenueScale = 4

// ArrowSchema describes the record batches produced by ArrowRecord.
var ArrowSchema = arrow.NewSchema([]arrow.Field{
	{Name: "product_category", Type: arrow.BinaryTypes.String},
	{Name: "region", Type: arrow.BinaryTypes.String},
	{Name: "payment_method", Type: arrow.BinaryTypes.String},
	{Name: "product_name", Type: arrow.BinaryTypes.String},
	{Name: "month", Type: arrow.PrimitiveTypes.Int8},
	{Name: "units_sold", Type: arrow.PrimitiveTypes.Int64},
	{Name: "total_revenue", Type: &arrow.Decimal128Type{Precision: 38, Scale: revenueScale}},
}, nil)

// ArrowRecord converts t into a single Arrow record batch. The caller releases it.
func ArrowRecord(t *Table, mem memory.Allocator) arrow.Record {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	b := array.NewRecordBuilder(mem, ArrowSchema)
	defer b.Release()

	n := t.Len()
	// 1. Dimensions: expand dictionary ids back into strings
	for f, d := range []*dimension{&t.categories, &t.regions, &t.payments, &t.products} {
		sb := b.Field(f).(*array.StringBuilder)
		sb.Reserve(n)
		for _, id := range d.ids {
			sb.Append(d.values[id])
		}
	}

	// 2. Month as a small integer
	mb := b.Field(4).(*array.Int8Builder)
	mb.Reserve(n)
	for _, id := range t.months.ids {
		mb.Append(int8(MonthNumber(t.months.values[id])))
	}

	// 3. Metrics
	b.Field(5).(*array.Int64Builder).AppendValues(t.units, nil)

	rb := b.Field(6).(*array.Decimal128Builder)
	rb.Reserve(n)
	for _, v := range t.revenues {
		scaled := v.Round(revenueScale).Shift(revenueScale).BigInt()
		rb.Append(decimal128.FromBigInt(scaled))
	}

	return b.NewRecord()
}

// WriteArrow streams t to w in the Arrow IPC stream format.
func WriteArrow(w io.Writer, t *Table) error {
	mem := memory.NewGoAllocator()
	rec := ArrowRecord(t, mem)
	defer rec.Release()

	iw := ipc.NewWriter(w, ipc.WithSchema(ArrowSchema), ipc.WithAllocator(mem))
	if err := iw.Write(rec); err != nil {
		iw.Close()
		return fmt.Errorf("write arrow record: %w", err)
	}
	if err := iw.Close(); err != nil {
		return fmt.Errorf("close arrow stream: %w", err)
	}
	return nil
}
