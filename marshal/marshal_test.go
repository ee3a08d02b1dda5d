package marshal_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grailbio/wdltools/marshal"
)

func TestEncodeScalars(t *testing.T) {
	e := marshal.NewEncoder()
	e.PutInt(42)
	require.Equal(t, "42", string(marshal.ReleaseEncoder(e)))

	e = marshal.NewEncoder()
	e.PutString("hi\n\"there\"")
	require.Equal(t, `"hi\n\"there\""`, string(marshal.ReleaseEncoder(e)))

	e = marshal.NewEncoder()
	e.PutBool(true)
	require.Equal(t, "true", string(marshal.ReleaseEncoder(e)))

	e = marshal.NewEncoder()
	e.PutNull()
	require.Equal(t, "null", string(marshal.ReleaseEncoder(e)))
}

func TestEncodeArray(t *testing.T) {
	e := marshal.NewEncoder()
	e.BeginArray()
	e.PutInt(1)
	e.PutInt(2)
	e.PutInt(3)
	e.EndArray()
	require.Equal(t, "[1,2,3]", string(marshal.ReleaseEncoder(e)))
}

func TestEncodeObject(t *testing.T) {
	e := marshal.NewEncoder()
	e.BeginObject()
	e.PutKey("a")
	e.PutInt(1)
	e.PutKey("b")
	e.PutString("x")
	e.EndObject()
	require.Equal(t, `{"a":1,"b":"x"}`, string(marshal.ReleaseEncoder(e)))
}

func TestEncodeNested(t *testing.T) {
	e := marshal.NewEncoder()
	e.BeginObject()
	e.PutKey("left")
	e.BeginArray()
	e.PutInt(1)
	e.PutInt(2)
	e.EndArray()
	e.PutKey("right")
	e.PutFloat(1.5)
	e.EndObject()
	require.Equal(t, `{"left":[1,2],"right":1.5}`, string(marshal.ReleaseEncoder(e)))
}

func TestDecodeRoundTrip(t *testing.T) {
	d := marshal.NewDecoder([]byte(`{"a":1,"b":[1,2.5,"x",null,true]}`))
	v, err := d.Decode()
	require.NoError(t, err)
	marshal.ReleaseDecoder(d)

	m, ok := v.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, int64(1), m["a"])
	arr, ok := m["b"].([]interface{})
	require.True(t, ok)
	require.Equal(t, int64(1), arr[0])
	require.Equal(t, 2.5, arr[1])
	require.Equal(t, "x", arr[2])
	require.Nil(t, arr[3])
	require.Equal(t, true, arr[4])
}
