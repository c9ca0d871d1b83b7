// Package awssm is a secret store on AWS Secrets Manager.
//
// Each encoded key is one secret named <prefix>/<scope>/<id>, stored as
// binary. Delete skips the recovery window so a deleted key cannot be
// restored.
package awssm

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"

	"nsigner.lol/lol"
	"nsigner.lol/store"
)

var (
	log, chk, errorf = lol.Main.Log, lol.Main.Check, lol.Main.Errorf
)

// Client is the part of *secretsmanager.Client the store uses.
type Client interface {
	GetSecretValue(c context.Context, in *secretsmanager.GetSecretValueInput,
		opts ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	CreateSecret(c context.Context, in *secretsmanager.CreateSecretInput,
		opts ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
	PutSecretValue(c context.Context, in *secretsmanager.PutSecretValueInput,
		opts ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
	DeleteSecret(c context.Context, in *secretsmanager.DeleteSecretInput,
		opts ...func(*secretsmanager.Options)) (*secretsmanager.DeleteSecretOutput, error)
	secretsmanager.ListSecretsAPIClient
}

// T is an AWS Secrets Manager secret store.
type T struct {
	client Client
	prefix string
}

var (
	_ store.I      = (*T)(nil)
	_ store.Lister = (*T)(nil)
)

// New loads the default AWS configuration, with region overriding the
// configured region when set, and builds a store on it.
func New(c context.Context, region, prefix string) (t *T, err error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	var cfg aws.Config
	if cfg, err = config.LoadDefaultConfig(c, opts...); chk.E(err) {
		err = errorf.E("awssm: loading aws config: %w", err)
		return
	}
	log.I.F("using aws secrets manager in %s", cfg.Region)
	t = NewWithClient(secretsmanager.NewFromConfig(cfg), prefix)
	return
}

// NewWithClient builds a store on an existing client.
func NewWithClient(client Client, prefix string) *T {
	return &T{client: client, prefix: strings.Trim(prefix, "/")}
}

func notFound(err error) bool {
	var rnf *types.ResourceNotFoundException
	return errors.As(err, &rnf)
}

func (t *T) Get(c context.Context, scope, id string) (secret []byte, err error) {
	if err = store.CheckKey(scope, id); err != nil {
		return
	}
	name := store.Path(t.prefix, scope, id)
	var out *secretsmanager.GetSecretValueOutput
	if out, err = t.client.GetSecretValue(c, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	}); err != nil {
		if notFound(err) {
			err = store.ErrNotFound
			return
		}
		err = errorf.E("awssm: get %s: %w", name, err)
		return
	}
	switch {
	case out.SecretBinary != nil:
		secret = append([]byte(nil), out.SecretBinary...)
		clear(out.SecretBinary)
	case out.SecretString != nil:
		// written by hand through the console
		secret = []byte(*out.SecretString)
	default:
		err = errorf.E("awssm: %s has no value", name)
	}
	return
}

func (t *T) Set(c context.Context, scope, id string, secret []byte) (err error) {
	if err = store.CheckKey(scope, id); err != nil {
		return
	}
	name := store.Path(t.prefix, scope, id)
	value := append([]byte(nil), secret...)
	defer clear(value)
	_, err = t.client.CreateSecret(c, &secretsmanager.CreateSecretInput{
		Name:         aws.String(name),
		SecretBinary: value,
	})
	var exists *types.ResourceExistsException
	if errors.As(err, &exists) {
		_, err = t.client.PutSecretValue(c, &secretsmanager.PutSecretValueInput{
			SecretId:     aws.String(name),
			SecretBinary: value,
		})
	}
	if err != nil {
		err = errorf.E("awssm: set %s: %w", name, err)
	}
	return
}

func (t *T) Delete(c context.Context, scope, id string) (err error) {
	if err = store.CheckKey(scope, id); err != nil {
		return
	}
	name := store.Path(t.prefix, scope, id)
	if _, err = t.client.DeleteSecret(c, &secretsmanager.DeleteSecretInput{
		SecretId:                   aws.String(name),
		ForceDeleteWithoutRecovery: aws.Bool(true),
	}); err != nil {
		if notFound(err) {
			err = nil
			return
		}
		err = errorf.E("awssm: delete %s: %w", name, err)
	}
	return
}

func (t *T) List(c context.Context, scope string) (ids []string, err error) {
	if err = store.CheckKey(scope, "-"); err != nil {
		return
	}
	prefix := store.Path(t.prefix, scope, "")
	p := secretsmanager.NewListSecretsPaginator(t.client, &secretsmanager.ListSecretsInput{
		Filters: []types.Filter{{
			Key:    types.FilterNameStringTypeName,
			Values: []string{prefix},
		}},
	})
	for p.HasMorePages() {
		var page *secretsmanager.ListSecretsOutput
		if page, err = p.NextPage(c); err != nil {
			err = errorf.E("awssm: list %s: %w", scope, err)
			return
		}
		for _, e := range page.SecretList {
			// the name filter matches prefixes of words, not of the path
			rest, ok := strings.CutPrefix(aws.ToString(e.Name), prefix)
			if ok && rest != "" && !strings.Contains(rest, "/") {
				ids = append(ids, rest)
			}
		}
	}
	slices.Sort(ids)
	return
}

func (t *T) Close() (err error) { return }
