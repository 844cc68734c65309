package paramstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// ssmAPI is the subset of *ssm.Client used here.
type ssmAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Getter resolves deployment parameters. config.ApplyParams depends on this
// rather than *Client.
type Getter interface {
	// Lookup returns ok=false when the parameter does not exist.
	Lookup(ctx context.Context, name string) (value string, ok bool, err error)
}

// Client reads parameters from SSM Parameter Store, decrypting SecureStrings.
type Client struct {
	api    ssmAPI
	prefix string
}

// New creates a Client. Names passed to Lookup are joined to prefix; an
// empty prefix uses names as given.
func New(api ssmAPI, prefix string) (*Client, error) {
	if api == nil {
		return nil, errors.New("paramstore: api must not be nil")
	}
	return &Client{api: api, prefix: strings.TrimRight(strings.TrimSpace(prefix), "/")}, nil
}

func (c *Client) path(name string) string {
	name = strings.TrimSpace(name)
	if c.prefix == "" {
		return name
	}
	return c.prefix + "/" + strings.TrimLeft(name, "/")
}

// Lookup fetches prefix+name with decryption. A missing parameter returns
// ok=false and no error.
func (c *Client) Lookup(ctx context.Context, name string) (string, bool, error) {
	if c.api == nil {
		return "", false, errors.New("paramstore: client not initialized")
	}
	if strings.TrimSpace(name) == "" {
		return "", false, errors.New("paramstore: name is required")
	}
	full := c.path(name)

	withDecryption := true
	out, err := c.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &full,
		WithDecryption: &withDecryption,
	})
	if err != nil {
		var nf *types.ParameterNotFound
		if errors.As(err, &nf) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("paramstore: get parameter %q: %w", full, err)
	}
	if out == nil || out.Parameter == nil || out.Parameter.Value == nil {
		return "", false, errors.New("paramstore: parameter missing value")
	}
	return *out.Parameter.Value, true, nil
}
