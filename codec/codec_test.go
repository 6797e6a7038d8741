package codec

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/unkn0wn-root/jamcodec"
)

// foreign satisfies jamcodec.Value through embedding but is not one of the
// concrete shapes.
type foreign struct{ jamcodec.Null }

func obj(kv ...any) *jamcodec.Object {
	o := jamcodec.NewObject()
	for i := 0; i < len(kv); i += 2 {
		o.Set(kv[i].(string), kv[i+1].(jamcodec.Value))
	}
	return o
}

func sample() jamcodec.Value {
	return obj(
		"name", jamcodec.Text("jam"),
		"on", jamcodec.Bool(true),
		"n", jamcodec.Int(-42),
		"pi", jamcodec.Float(3.25),
		"list", jamcodec.Array{jamcodec.Null{}, jamcodec.Int(1), jamcodec.Array{}},
		"nested", obj("z", jamcodec.Int(0), "a", jamcodec.Text("")),
	)
}

func TestLosslessRoundTrips(t *testing.T) {
	cases := []struct {
		name string
		c    Codec[jamcodec.Value]
	}{
		{"tagged", TaggedValue{}},
		{"tagged-custom", TaggedValue{C: jamcodec.New(jamcodec.Options{MaxDepth: 8})}},
		{"json", JSON{}},
		{"msgpack", Msgpack{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := sample()
			b, err := tc.c.Encode(in)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			out, err := tc.c.Decode(b)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !jamcodec.Equal(in, out) {
				t.Fatalf("round trip mismatch:\n in=%#v\nout=%#v", in, out)
			}
			// key order survives these formats
			got := out.(*jamcodec.Object).Keys()
			want := in.(*jamcodec.Object).Keys()
			if strings.Join(got, ",") != strings.Join(want, ",") {
				t.Fatalf("keys=%v want %v", got, want)
			}
		})
	}
}

func TestMsgpackKeepsBytes(t *testing.T) {
	in := jamcodec.Array{jamcodec.Bytes{0, 1, 0xff}, jamcodec.Bytes{}}
	b, err := Msgpack{}.Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Msgpack{}.Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	if !jamcodec.Equal(in, out) {
		t.Fatalf("got %#v", out)
	}
}

func TestMsgpackTrailing(t *testing.T) {
	b, _ := Msgpack{}.Encode(jamcodec.Int(1))
	_, err := Msgpack{}.Decode(append(b, 0xc0))
	if !errors.Is(err, jamcodec.ErrTrailingData) {
		t.Fatalf("err=%v", err)
	}
}

func TestJSONShape(t *testing.T) {
	b, err := JSON{}.Encode(obj(
		"b", jamcodec.Int(1),
		"a", jamcodec.Bytes{1, 2},
		"f", jamcodec.Float(1.5),
		"w", jamcodec.Float(2),
	))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(b), `{"b":1,"a":"AQI=","f":1.5,"w":2}`; got != want {
		t.Fatalf("json=%s want %s", got, want)
	}
}

func TestJSONDecodeNumbers(t *testing.T) {
	v, err := JSON{}.Decode([]byte(`[9007199254740993, 1.0, 0.5, -3]`))
	if err != nil {
		t.Fatal(err)
	}
	want := jamcodec.Array{jamcodec.Int(9007199254740993), jamcodec.Int(1), jamcodec.Float(0.5), jamcodec.Int(-3)}
	if !jamcodec.Equal(v, want) {
		t.Fatalf("got %#v", v)
	}
}

func TestJSONErrors(t *testing.T) {
	if _, err := (JSON{}).Encode(jamcodec.Float(math.NaN())); !errors.Is(err, jamcodec.ErrUnsupportedShape) {
		t.Fatalf("nan err=%v", err)
	}
	if _, err := (JSON{}).Encode(jamcodec.Text("\xff")); !errors.Is(err, jamcodec.ErrInvalidText) {
		t.Fatalf("text err=%v", err)
	}
	if _, err := (JSON{}).Decode([]byte(`1 2`)); !errors.Is(err, jamcodec.ErrTrailingData) {
		t.Fatalf("trailing err=%v", err)
	}
	if _, err := (JSON{}).Decode([]byte(`[1,`)); err == nil {
		t.Fatal("expected error on truncated json")
	}
	deep := strings.Repeat("[", maxDepth+1) + strings.Repeat("]", maxDepth+1)
	if _, err := (JSON{}).Decode([]byte(deep)); !errors.Is(err, jamcodec.ErrNestingTooDeep) {
		t.Fatalf("deep err=%v", err)
	}
}

func TestInvalidObjectKeys(t *testing.T) {
	bad := obj("ok", jamcodec.Int(1), "\xff", jamcodec.Int(2))
	codecs := map[string]Codec[jamcodec.Value]{
		"tagged":  TaggedValue{},
		"json":    JSON{},
		"cbor":    MustCBOR(),
		"msgpack": Msgpack{},
		"proto":   Proto{},
	}
	for name, c := range codecs {
		if b, err := c.Encode(bad); !errors.Is(err, jamcodec.ErrInvalidText) {
			t.Fatalf("%s: encoded %q err=%v", name, b, err)
		}
		nested := jamcodec.Array{obj("a", bad)}
		if _, err := c.Encode(nested); !errors.Is(err, jamcodec.ErrInvalidText) {
			t.Fatalf("%s nested: err=%v", name, err)
		}
	}

	// fixmap{1} fixstr{1} 0xff, positive fixint 1
	if _, err := (Msgpack{}).Decode([]byte{0x81, 0xa1, 0xff, 0x01}); !errors.Is(err, jamcodec.ErrInvalidText) {
		t.Fatalf("msgpack decode err=%v", err)
	}
}

func TestCBORSortsDecodedKeys(t *testing.T) {
	c := MustCBOR()
	in := obj(
		"b", jamcodec.Int(1),
		"a", jamcodec.Array{jamcodec.Float(1.5), jamcodec.Bytes{9}, jamcodec.Null{}},
		"c", jamcodec.Int(-7),
	)
	b, err := c.Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := c.Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	want := obj(
		"a", jamcodec.Array{jamcodec.Float(1.5), jamcodec.Bytes{9}, jamcodec.Null{}},
		"b", jamcodec.Int(1),
		"c", jamcodec.Int(-7),
	)
	if !jamcodec.Equal(want, out) {
		t.Fatalf("got %#v", out)
	}
	if got := strings.Join(out.(*jamcodec.Object).Keys(), ","); got != "a,b,c" {
		t.Fatalf("keys=%s", got)
	}
}

func TestCBORTrailing(t *testing.T) {
	c := MustCBOR()
	b, _ := c.Encode(jamcodec.Int(1))
	if _, err := c.Decode(append(b, 0x01)); err == nil {
		t.Fatal("expected error on trailing bytes")
	}
}

func TestProtoShape(t *testing.T) {
	in := obj("b", jamcodec.Int(1), "a", jamcodec.Bytes{1, 2}, "f", jamcodec.Float(0.25))
	b, err := Proto{}.Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	again, _ := Proto{}.Encode(in)
	if !bytes.Equal(b, again) {
		t.Fatal("proto encoding is not deterministic")
	}
	out, err := Proto{}.Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	want := obj("a", jamcodec.Text("AQI="), "b", jamcodec.Int(1), "f", jamcodec.Float(0.25))
	if !jamcodec.Equal(out, want) {
		t.Fatalf("got %#v", out)
	}
	if got := strings.Join(out.(*jamcodec.Object).Keys(), ","); got != "a,b,f" {
		t.Fatalf("keys=%s", got)
	}
}

func TestProtoRejectsWideInt(t *testing.T) {
	_, err := Proto{}.Encode(jamcodec.Int(jamcodec.MaxSafeInteger + 1))
	if !errors.Is(err, jamcodec.ErrUnsupportedShape) {
		t.Fatalf("err=%v", err)
	}
	if _, err := (Proto{}).Encode(jamcodec.Int(-jamcodec.MaxSafeInteger)); err != nil {
		t.Fatalf("edge err=%v", err)
	}
}

func TestUnsupportedShape(t *testing.T) {
	codecs := map[string]Codec[jamcodec.Value]{
		"tagged":  TaggedValue{},
		"json":    JSON{},
		"cbor":    MustCBOR(),
		"msgpack": Msgpack{},
		"proto":   Proto{},
	}
	for name, c := range codecs {
		if _, err := c.Encode(jamcodec.Array{foreign{}}); !errors.Is(err, jamcodec.ErrUnsupportedShape) {
			t.Fatalf("%s: err=%v", name, err)
		}
	}
}

func TestTaggedVariants(t *testing.T) {
	for _, v := range []jamcodec.Term{
		jamcodec.VariantA{},
		jamcodec.VariantB{First: 7, Second: 1 << 40},
		jamcodec.VariantC{A: 1, B: 2},
	} {
		b, err := Tagged{}.Encode(v)
		if err != nil {
			t.Fatal(err)
		}
		got, err := Tagged{}.Decode(b)
		if err != nil {
			t.Fatal(err)
		}
		if !jamcodec.Equal(got, v) {
			t.Fatalf("got %#v want %#v", got, v)
		}
		if _, err := (TaggedValue{}).Decode(b); !errors.Is(err, jamcodec.ErrUnsupportedShape) {
			t.Fatalf("TaggedValue accepted a variant: %v", err)
		}
	}
}

func TestTranscode(t *testing.T) {
	b, err := Transcode[jamcodec.Value](TaggedValue{}, JSON{}, []byte(`{"k":[1,2.5,"x"],"a":null}`))
	if err != nil {
		t.Fatal(err)
	}
	want, _ := jamcodec.Encode(obj(
		"k", jamcodec.Array{jamcodec.Int(1), jamcodec.Float(2.5), jamcodec.Text("x")},
		"a", jamcodec.Null{},
	))
	if !bytes.Equal(b, want) {
		t.Fatalf("got % x want % x", b, want)
	}

	back, err := Transcode[jamcodec.Value](JSON{}, TaggedValue{}, b)
	if err != nil {
		t.Fatal(err)
	}
	if string(back) != `{"k":[1,2.5,"x"],"a":null}` {
		t.Fatalf("json=%s", back)
	}

	if _, err := Transcode[jamcodec.Value](JSON{}, TaggedValue{}, []byte{0x09}); !errors.Is(err, jamcodec.ErrUnknownTag) {
		t.Fatalf("err=%v", err)
	}
}

func TestLimit(t *testing.T) {
	c := Limit[jamcodec.Value]{Inner: TaggedValue{}, MaxDecode: 3, MaxEncode: 3}
	if _, err := c.Encode(jamcodec.Text("long")); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("encode err=%v", err)
	}
	b, err := c.Encode(jamcodec.Int(1))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Decode(b); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Decode([]byte{0x04, 0x02, 'h', 'i'}); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("decode err=%v", err)
	}

	open := Limit[jamcodec.Value]{Inner: TaggedValue{}}
	if _, err := open.Encode(jamcodec.Text(strings.Repeat("x", 1<<12))); err != nil {
		t.Fatalf("unbounded encode err=%v", err)
	}
}
