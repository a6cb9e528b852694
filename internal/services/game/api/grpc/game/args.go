package game

import (
	"math"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	apperrors "github.com/louisbranch/legions/internal/platform/errors"
)

// args reads typed fields out of a request struct. The first bad field is
// kept in err; later reads become no-ops.
type args struct {
	fields map[string]*structpb.Value
	err    error
}

func newArgs(in *structpb.Struct) *args {
	return &args{fields: in.GetFields()}
}

func (a *args) fail(field, msg string) {
	if a.err == nil {
		a.err = apperrors.WithMetadata(apperrors.CodeInvalidArgument, field+": "+msg, map[string]string{"Field": field})
	}
}

func (a *args) value(field string, required bool) (*structpb.Value, bool) {
	if a.err != nil {
		return nil, false
	}
	v, ok := a.fields[field]
	if !ok || v == nil {
		if required {
			a.fail(field, "is required")
		}
		return nil, false
	}
	if _, null := v.GetKind().(*structpb.Value_NullValue); null {
		if required {
			a.fail(field, "is required")
		}
		return nil, false
	}
	return v, true
}

func (a *args) str(field string) string {
	v, ok := a.value(field, true)
	if !ok {
		return ""
	}
	s, isString := v.GetKind().(*structpb.Value_StringValue)
	if !isString {
		a.fail(field, "must be a string")
		return ""
	}
	return strings.TrimSpace(s.StringValue)
}

func (a *args) optStr(field string) string {
	if _, ok := a.value(field, false); !ok {
		return ""
	}
	return a.str(field)
}

func (a *args) integer(field string) int {
	v, ok := a.value(field, true)
	if !ok {
		return 0
	}
	n, isNumber := v.GetKind().(*structpb.Value_NumberValue)
	if !isNumber || n.NumberValue != math.Trunc(n.NumberValue) ||
		n.NumberValue > math.MaxInt32 || n.NumberValue < math.MinInt32 {
		a.fail(field, "must be an integer")
		return 0
	}
	return int(n.NumberValue)
}

func (a *args) optInt(field string) int {
	if _, ok := a.value(field, false); !ok {
		return 0
	}
	return a.integer(field)
}

func (a *args) optBool(field string) bool {
	v, ok := a.value(field, false)
	if !ok {
		return false
	}
	b, isBool := v.GetKind().(*structpb.Value_BoolValue)
	if !isBool {
		a.fail(field, "must be a boolean")
		return false
	}
	return b.BoolValue
}

// strs reads a list of strings. A missing field is an empty list.
func (a *args) strs(field string) []string {
	v, ok := a.value(field, false)
	if !ok {
		return nil
	}
	list, isList := v.GetKind().(*structpb.Value_ListValue)
	if !isList {
		a.fail(field, "must be a list of strings")
		return nil
	}
	out := make([]string, 0, len(list.ListValue.GetValues()))
	for _, item := range list.ListValue.GetValues() {
		s, isString := item.GetKind().(*structpb.Value_StringValue)
		if !isString {
			a.fail(field, "must be a list of strings")
			return nil
		}
		out = append(out, s.StringValue)
	}
	return out
}

// seq reads an optional action sequence number.
func (a *args) seq(field string) uint64 {
	v, ok := a.value(field, false)
	if !ok {
		return 0
	}
	n, isNumber := v.GetKind().(*structpb.Value_NumberValue)
	if !isNumber || n.NumberValue < 0 || n.NumberValue != math.Trunc(n.NumberValue) || n.NumberValue > 1<<53 {
		a.fail(field, "must be a sequence number")
		return 0
	}
	return uint64(n.NumberValue)
}
