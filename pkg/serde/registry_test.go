package serde_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/azhar9/faust/pkg/codec"
	"github.com/azhar9/faust/pkg/message"
	"github.com/azhar9/faust/pkg/model"
	"github.com/azhar9/faust/pkg/serde"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSerializer is an async serializer that marks everything it touches, so
// tests can tell which execution path a call took.
type fakeSerializer struct {
	registry *serde.Registry
}

var fakeConstructions atomic.Int64

func init() {
	serde.RegisterSerializer("fake", func(r *serde.Registry) serde.AsyncSerializer {
		fakeConstructions.Add(1)
		return &fakeSerializer{registry: r}
	})
}

func (f *fakeSerializer) DecodeKey(ctx context.Context, data []byte) (any, error) {
	return "key:" + string(data), nil
}

func (f *fakeSerializer) DecodeValue(ctx context.Context, data []byte) (any, error) {
	return "value:" + string(data), nil
}

func (f *fakeSerializer) EncodeKey(ctx context.Context, topic string, key any) ([]byte, error) {
	return []byte("fakekey@" + topic), nil
}

func (f *fakeSerializer) EncodeValue(ctx context.Context, topic string, value any) ([]byte, error) {
	return []byte("fakevalue@" + topic), nil
}

// user is the schema-bound model used throughout these tests.
type user struct {
	Name string `json:"name"`
	Age  int    `json:"age"`

	serializer codec.Name
}

func (u *user) Options() model.Options {
	return model.Options{Serializer: u.serializer}
}

func (u *user) Dumps() ([]byte, error) {
	return json.Marshal(u)
}

// userType builds a decode-side Type for user with the given declared serializer.
func userType(serializer codec.Name) model.Type {
	return &model.Def{
		Name: "user",
		Opts: model.Options{Serializer: serializer},
		Ctor: func(payload any) (model.Model, error) {
			switch p := payload.(type) {
			case map[string]any:
				u := &user{serializer: serializer}
				u.Name, _ = p["name"].(string)
				if age, ok := p["age"].(float64); ok {
					u.Age = int(age)
				}
				return u, nil
			case string:
				return &user{Name: p, serializer: serializer}, nil
			}
			return nil, fmt.Errorf("unexpected payload type %T", payload)
		},
	}
}

func newRegistry(t *testing.T, keySerializer, valueSerializer codec.Name) *serde.Registry {
	t.Helper()
	r, err := serde.NewRegistry(keySerializer, valueSerializer)
	require.NoError(t, err)
	return r
}

func TestNewRegistryDefaultsValueSerializerToJSON(t *testing.T) {
	r := newRegistry(t, "", "")
	assert.Equal(t, codec.JSON, r.ValueSerializer())
	assert.Equal(t, codec.Name(""), r.KeySerializer())
}

func TestNewRegistryRejectsUnknownDefaults(t *testing.T) {
	_, err := serde.NewRegistry("", "definitely-not-registered")
	assert.Error(t, err)

	_, err = serde.NewRegistry("definitely-not-registered", "json")
	assert.Error(t, err)
}

func TestDecodeKeyUsesDefaultKeySerializer(t *testing.T) {
	r := newRegistry(t, codec.JSON, "")

	got, err := r.DecodeKey(context.Background(), userType(""), []byte(`{"name":"alice","age":30}`))
	require.NoError(t, err)
	assert.Equal(t, &user{Name: "alice", Age: 30}, got)
}

func TestDecodeKeyTypeDeclaredSerializerWins(t *testing.T) {
	// Registry default would fail on this payload; the declared name routes
	// to the fake serializer instead.
	r := newRegistry(t, codec.JSON, "")

	got, err := r.DecodeKey(context.Background(), userType("fake"), []byte("bob"))
	require.NoError(t, err)
	assert.Equal(t, &user{Name: "key:bob", serializer: "fake"}, got)
}

func TestDecodeKeyAbsencePassthrough(t *testing.T) {
	r := newRegistry(t, "", "")

	got, err := r.DecodeKey(context.Background(), userType(""), nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = r.DecodeKey(context.Background(), nil, []byte("opaque"))
	require.NoError(t, err)
	assert.Equal(t, []byte("opaque"), got)
}

func TestDecodeKeyNormalizesErrors(t *testing.T) {
	r := newRegistry(t, codec.JSON, "")

	_, err := r.DecodeKey(context.Background(), userType(""), []byte("not json"))
	require.Error(t, err)

	var kerr *serde.KeyDecodeError
	require.True(t, errors.As(err, &kerr))
	assert.Error(t, kerr.Unwrap())

	// Construction failures normalize the same way.
	typ := &model.Def{
		Name: "broken",
		Ctor: func(any) (model.Model, error) { return nil, errors.New("boom") },
		Opts: model.Options{Serializer: codec.JSON},
	}
	_, err = r.DecodeKey(context.Background(), typ, []byte(`{}`))
	require.True(t, errors.As(err, &kerr))
	assert.ErrorContains(t, kerr.Unwrap(), "boom")
}

func TestDecodeValueTombstone(t *testing.T) {
	r := newRegistry(t, "", "")

	ev, err := r.DecodeValue(context.Background(), userType(""), nil, &message.Message{Value: nil}, nil)
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestDecodeValueAttachesRequest(t *testing.T) {
	r := newRegistry(t, "", "json")
	req := &message.Request{ID: 7}
	msg := &message.Message{Topic: "users", Value: []byte(`{"name":"carol","age":41}`)}

	ev, err := r.DecodeValue(context.Background(), userType(""), []byte("k"), msg, req)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, &user{Name: "carol", Age: 41}, ev.Value)
	assert.Same(t, req, ev.Req)
	assert.Same(t, msg, ev.Message)
	assert.Equal(t, []byte("k"), ev.Key)
}

func TestDecodeValueNormalizesErrors(t *testing.T) {
	r := newRegistry(t, "", "json")
	msg := &message.Message{Value: []byte("not json")}

	_, err := r.DecodeValue(context.Background(), userType(""), nil, msg, nil)
	require.Error(t, err)

	var verr *serde.ValueDecodeError
	require.True(t, errors.As(err, &verr))
	assert.Error(t, verr.Unwrap())

	var kerr *serde.KeyDecodeError
	assert.False(t, errors.As(err, &kerr), "value failures must not surface as key errors")
}

func TestRoundtripModelValue(t *testing.T) {
	r := newRegistry(t, "", "json")
	in := &user{Name: "dave", Age: 23, serializer: codec.JSON}

	data, err := r.EncodeValue(context.Background(), "users", in, "")
	require.NoError(t, err)

	req := &message.Request{ID: 1}
	ev, err := r.DecodeValue(context.Background(), userType(codec.JSON), nil, &message.Message{Value: data}, req)
	require.NoError(t, err)
	assert.Equal(t, &user{Name: "dave", Age: 23, serializer: codec.JSON}, ev.Value)
	assert.Same(t, req, ev.Req)
}

func TestEncodeKeyModelSerializerOverridesArgument(t *testing.T) {
	r := newRegistry(t, "", "")
	key := &user{Name: "erin", serializer: "fake"}

	// The "json" argument loses to the model's declared name.
	data, err := r.EncodeKey(context.Background(), "users", key, codec.JSON)
	require.NoError(t, err)
	assert.Equal(t, []byte("fakekey@users"), data)
}

func TestEncodeModelFallsBackToSelfEncoding(t *testing.T) {
	// "mystery" is known to neither the codec table nor the serializer
	// table; a model naming it is expected to encode itself.
	r := newRegistry(t, "", "")
	v := &user{Name: "frank", Age: 9, serializer: "mystery"}

	data, err := r.EncodeValue(context.Background(), "users", v, "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"frank","age":9}`, string(data))

	data, err = r.EncodeKey(context.Background(), "users", v, "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"frank","age":9}`, string(data))
}

func TestEncodeUntypedWithSerializerUsesCodecTable(t *testing.T) {
	r := newRegistry(t, "", "")

	data, err := r.EncodeValue(context.Background(), "users", map[string]any{"a": 1}, codec.JSON)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))
}

func TestEncodeValueUntypedPassthrough(t *testing.T) {
	// An untyped value with no serializer name passes through unchanged; the
	// registry never picks a codec on the caller's behalf.
	r := newRegistry(t, "", "json")
	raw := []byte(`{"a":1}`)

	data, err := r.EncodeValue(context.Background(), "topic1", raw, "")
	require.NoError(t, err)
	assert.Equal(t, raw, data)

	_, err = r.EncodeValue(context.Background(), "topic1", map[string]any{"a": 1}, "")
	assert.Error(t, err)
}

func TestEncodeKeyCoercion(t *testing.T) {
	r := newRegistry(t, "", "")

	data, err := r.EncodeKey(context.Background(), "t", "plain", "")
	require.NoError(t, err)
	assert.Equal(t, []byte("plain"), data)

	data, err = r.EncodeKey(context.Background(), "t", nil, "")
	require.NoError(t, err)
	assert.Nil(t, data)

	_, err = r.EncodeKey(context.Background(), "t", 42, "")
	assert.Error(t, err)
}

func TestEncodeErrorsAreNotWrapped(t *testing.T) {
	r := newRegistry(t, "", "")

	_, err := r.EncodeValue(context.Background(), "t", map[string]any{}, "no-such-codec")
	require.Error(t, err)

	var verr *serde.ValueDecodeError
	var kerr *serde.KeyDecodeError
	assert.False(t, errors.As(err, &verr))
	assert.False(t, errors.As(err, &kerr))
}

func TestAsyncSerializerConstructedOncePerRegistry(t *testing.T) {
	r := newRegistry(t, "", "")
	before := fakeConstructions.Load()

	key := &user{serializer: "fake"}
	for i := 0; i < 5; i++ {
		_, err := r.EncodeKey(context.Background(), "t", key, "")
		require.NoError(t, err)
		_, err = r.EncodeValue(context.Background(), "t", key, "")
		require.NoError(t, err)
	}

	assert.Equal(t, int64(1), fakeConstructions.Load()-before)

	// A second registry owns its own instance.
	r2 := newRegistry(t, "", "")
	_, err := r2.EncodeKey(context.Background(), "t", key, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), fakeConstructions.Load()-before)
}

func TestConcurrentResolveConstructsOnce(t *testing.T) {
	r := newRegistry(t, "", "")
	before := fakeConstructions.Load()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.EncodeValue(context.Background(), "t", &user{serializer: "fake"}, "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), fakeConstructions.Load()-before)
}
