// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package table

import (
	"encoding/hex"
	"math/big"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"
)

const (
	secondsPerDay = 24 * 60 * 60
	// julianUnixEpoch is the Julian day number of 1970-01-01.
	julianUnixEpoch = 2440588
)

// Cell converts a single Parquet value of the given leaf node to a Go value.
// Null values become nil. The logical type annotation takes precedence over
// the physical kind.
func Cell(node parquet.Node, v parquet.Value) any {
	if v.IsNull() {
		return nil
	}

	lt := node.Type().LogicalType()
	if lt != nil {
		switch {
		case lt.Date != nil:
			return time.Unix(int64(v.Int32())*secondsPerDay, 0).UTC()
		case lt.Timestamp != nil:
			return timestamp(v.Int64(), lt.Timestamp.Unit)
		case lt.Time != nil:
			return timeOfDay(v, lt.Time.Unit)
		case lt.Decimal != nil:
			return decimal(v, int(lt.Decimal.Scale))
		case lt.UUID != nil:
			if id, err := uuid.FromBytes(v.ByteArray()); err == nil {
				return id.String()
			}
		case lt.Integer != nil && !lt.Integer.IsSigned:
			if v.Kind() == parquet.Int32 {
				return uint64(uint32(v.Int32()))
			}
			return uint64(v.Int64())
		case lt.UTF8 != nil, lt.Enum != nil, lt.Json != nil:
			return string(v.ByteArray())
		}
	}

	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return int64(v.Int32())
	case parquet.Int64:
		return v.Int64()
	case parquet.Int96:
		i := v.Int96()
		nanos := uint64(i[1])<<32 | uint64(i[0])
		days := int64(i[2]) - julianUnixEpoch
		return time.Unix(days*secondsPerDay, int64(nanos)).UTC()
	case parquet.Float:
		return v.Float()
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		b := v.ByteArray()
		if utf8.Valid(b) {
			return string(b)
		}
		return hex.EncodeToString(b)
	}
	return v.String()
}

func timestamp(n int64, unit format.TimeUnit) time.Time {
	switch {
	case unit.Millis != nil:
		return time.UnixMilli(n).UTC()
	case unit.Micros != nil:
		return time.UnixMicro(n).UTC()
	default:
		return time.Unix(0, n).UTC()
	}
}

// timeOfDay renders a TIME value as 15:04:05 with a fractional part when
// one is present.
func timeOfDay(v parquet.Value, unit format.TimeUnit) string {
	var d time.Duration
	switch {
	case unit.Millis != nil:
		d = time.Duration(v.Int32()) * time.Millisecond
	case unit.Micros != nil:
		d = time.Duration(v.Int64()) * time.Microsecond
	default:
		d = time.Duration(v.Int64())
	}
	return time.Unix(0, 0).UTC().Add(d).Format("15:04:05.999999999")
}

// decimal renders the unscaled integer of a DECIMAL value with scale digits
// after the point. Byte array decimals are big-endian two's complement.
func decimal(v parquet.Value, scale int) string {
	unscaled := new(big.Int)
	switch v.Kind() {
	case parquet.Int32:
		unscaled.SetInt64(int64(v.Int32()))
	case parquet.Int64:
		unscaled.SetInt64(v.Int64())
	default:
		b := v.ByteArray()
		unscaled.SetBytes(b)
		if len(b) > 0 && b[0]&0x80 != 0 {
			unscaled.Sub(unscaled, new(big.Int).Lsh(big.NewInt(1), uint(8*len(b))))
		}
	}
	return formatDecimal(unscaled, scale)
}

func formatDecimal(unscaled *big.Int, scale int) string {
	sign := ""
	if unscaled.Sign() < 0 {
		sign = "-"
	}
	digits := new(big.Int).Abs(unscaled).String()
	if scale <= 0 {
		return sign + digits + strings.Repeat("0", -scale)
	}
	if len(digits) <= scale {
		digits = strings.Repeat("0", scale-len(digits)+1) + digits
	}
	cut := len(digits) - scale
	return sign + digits[:cut] + "." + digits[cut:]
}

// describe returns "PHYSICAL" or "PHYSICAL(LOGICAL)" for a leaf node.
func describe(node parquet.Node) string {
	typ := node.Type()
	physical := typ.Kind().String()
	if name := logicalName(typ.LogicalType()); name != "" {
		return physical + "(" + name + ")"
	}
	return physical
}

func logicalName(lt *format.LogicalType) string {
	if lt == nil {
		return ""
	}
	switch {
	case lt.UTF8 != nil:
		return "STRING"
	case lt.Enum != nil:
		return "ENUM"
	case lt.Json != nil:
		return "JSON"
	case lt.Bson != nil:
		return "BSON"
	case lt.UUID != nil:
		return "UUID"
	case lt.Date != nil:
		return "DATE"
	case lt.Time != nil:
		return "TIME"
	case lt.Timestamp != nil:
		return "TIMESTAMP"
	case lt.Decimal != nil:
		return "DECIMAL"
	case lt.Integer != nil:
		if lt.Integer.IsSigned {
			return "INT"
		}
		return "UINT"
	}
	return ""
}
