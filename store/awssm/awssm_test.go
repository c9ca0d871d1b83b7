package awssm

import (
	"context"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/stretchr/testify/require"

	"nsigner.lol/store"
	"nsigner.lol/store/storetest"
)

// fake answers like Secrets Manager does for the calls the store makes,
// including its error types.
type fake struct {
	sync.Mutex
	m       map[string][]byte
	strings map[string]string
	calls   []string
}

func newFake() *fake {
	return &fake{m: make(map[string][]byte), strings: make(map[string]string)}
}

func (f *fake) GetSecretValue(c context.Context, in *secretsmanager.GetSecretValueInput,
	_ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.Lock()
	defer f.Unlock()
	f.calls = append(f.calls, "get")
	name := aws.ToString(in.SecretId)
	if s, ok := f.strings[name]; ok {
		return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(s)}, nil
	}
	v, ok := f.m[name]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("not found")}
	}
	return &secretsmanager.GetSecretValueOutput{SecretBinary: append([]byte(nil), v...)}, nil
}

func (f *fake) CreateSecret(c context.Context, in *secretsmanager.CreateSecretInput,
	_ ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error) {
	f.Lock()
	defer f.Unlock()
	f.calls = append(f.calls, "create")
	name := aws.ToString(in.Name)
	if _, ok := f.m[name]; ok {
		return nil, &types.ResourceExistsException{Message: aws.String("exists")}
	}
	f.m[name] = append([]byte(nil), in.SecretBinary...)
	return &secretsmanager.CreateSecretOutput{Name: in.Name}, nil
}

func (f *fake) PutSecretValue(c context.Context, in *secretsmanager.PutSecretValueInput,
	_ ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error) {
	f.Lock()
	defer f.Unlock()
	f.calls = append(f.calls, "put")
	name := aws.ToString(in.SecretId)
	if _, ok := f.m[name]; !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("not found")}
	}
	f.m[name] = append([]byte(nil), in.SecretBinary...)
	return &secretsmanager.PutSecretValueOutput{}, nil
}

func (f *fake) DeleteSecret(c context.Context, in *secretsmanager.DeleteSecretInput,
	_ ...func(*secretsmanager.Options)) (*secretsmanager.DeleteSecretOutput, error) {
	f.Lock()
	defer f.Unlock()
	f.calls = append(f.calls, "delete")
	if !aws.ToBool(in.ForceDeleteWithoutRecovery) {
		panic("delete must skip the recovery window")
	}
	name := aws.ToString(in.SecretId)
	if _, ok := f.m[name]; !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("not found")}
	}
	delete(f.m, name)
	return &secretsmanager.DeleteSecretOutput{}, nil
}

// ListSecrets pages one secret at a time, matching names that start with the
// filter value.
func (f *fake) ListSecrets(c context.Context, in *secretsmanager.ListSecretsInput,
	_ ...func(*secretsmanager.Options)) (*secretsmanager.ListSecretsOutput, error) {
	f.Lock()
	defer f.Unlock()
	var names []string
	for n := range f.m {
		if strings.HasPrefix(n, in.Filters[0].Values[0]) {
			names = append(names, n)
		}
	}
	// sorted so the page token is stable
	slices.Sort(names)
	start := 0
	if in.NextToken != nil {
		for i, n := range names {
			if n == *in.NextToken {
				start = i
			}
		}
	}
	out := &secretsmanager.ListSecretsOutput{}
	if start < len(names) {
		out.SecretList = []types.SecretListEntry{{Name: aws.String(names[start])}}
		if start+1 < len(names) {
			out.NextToken = aws.String(names[start+1])
		}
	}
	return out, nil
}

func TestStore(t *testing.T) {
	storetest.Run(t, NewWithClient(newFake(), "nsigner/"))
}

func TestSetCreatesThenPuts(t *testing.T) {
	f := newFake()
	s := NewWithClient(f, "p")
	c := context.Background()
	require.NoError(t, s.Set(c, "alice", "k1", []byte("one")))
	require.NoError(t, s.Set(c, "alice", "k1", []byte("two")))
	require.Equal(t, []string{"create", "create", "put"}, f.calls)
	require.Equal(t, []byte("two"), f.m["p/alice/k1"])
}

func TestSecretString(t *testing.T) {
	f := newFake()
	f.strings["alice/k1"] = "aGVsbG8="
	s := NewWithClient(f, "")
	got, err := s.Get(context.Background(), "alice", "k1")
	require.NoError(t, err)
	require.Equal(t, []byte("aGVsbG8="), got)
}

func TestInvalidKey(t *testing.T) {
	f := newFake()
	s := NewWithClient(f, "")
	require.ErrorIs(t, s.Delete(context.Background(), "a", "b/c"), store.ErrInvalidKey)
	require.Empty(t, f.calls)
}
