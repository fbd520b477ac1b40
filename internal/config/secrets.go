package config

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/hashicorp/vault/api"
)

var secretPattern = regexp.MustCompile(`^\$\{(ENV|VAULT|AWS_SM):([^}]+)\}$`)

// secretProviders resolves the reference part of ${PROVIDER:ref}.
var secretProviders = map[string]func(ref string) (string, error){
	"ENV":    resolveEnv,
	"VAULT":  resolveVault,
	"AWS_SM": resolveAWSSecretsManager,
}

func (c *Config) resolveSecrets() error {
	var err error
	c.Live.Password, err = ResolveValue(c.Live.Password)
	if err != nil {
		return fmt.Errorf("live password: %w", err)
	}
	c.Live.Username, err = ResolveValue(c.Live.Username)
	if err != nil {
		return fmt.Errorf("live username: %w", err)
	}
	return nil
}

// ResolveValue resolves a ${ENV:name}, ${VAULT:path#key} or ${AWS_SM:name}
// reference. Other values are returned unchanged.
func ResolveValue(val string) (string, error) {
	matches := secretPattern.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return val, nil
	}
	resolve, ok := secretProviders[matches[1]]
	if !ok {
		return "", fmt.Errorf("unknown secrets provider: %s", matches[1])
	}
	return resolve(matches[2])
}

func resolveEnv(name string) (string, error) {
	v := os.Getenv(name)
	if v == "" {
		return "", fmt.Errorf("environment variable %s not set", name)
	}
	return v, nil
}

// resolveVault reads a KV secret. Format: secret/data/path#key
func resolveVault(ref string) (string, error) {
	path, key, ok := strings.Cut(ref, "#")
	if !ok || path == "" || key == "" {
		return "", fmt.Errorf("invalid Vault reference %q: expected format path#key", ref)
	}

	addr := os.Getenv("VAULT_ADDR")
	if addr == "" {
		return "", fmt.Errorf("VAULT_ADDR environment variable not set")
	}
	token := os.Getenv("VAULT_TOKEN")
	if token == "" {
		return "", fmt.Errorf("VAULT_TOKEN environment variable not set")
	}

	vc := api.DefaultConfig()
	vc.Address = addr
	client, err := api.NewClient(vc)
	if err != nil {
		return "", fmt.Errorf("creating Vault client: %w", err)
	}
	client.SetToken(token)

	secret, err := client.Logical().Read(path)
	if err != nil {
		return "", fmt.Errorf("reading Vault secret at %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("no secret found at %s", path)
	}

	// KV v2 nests the payload under "data".
	data := secret.Data
	if inner, ok := data["data"].(map[string]interface{}); ok {
		data = inner
	}

	str, ok := data[key].(string)
	if !ok {
		return "", fmt.Errorf("key %q not found or not a string in Vault secret at %s", key, path)
	}
	return str, nil
}

// resolveAWSSecretsManager reads a string secret by name or ARN.
func resolveAWSSecretsManager(ref string) (string, error) {
	ctx := context.Background()
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return "", fmt.Errorf("loading AWS config: %w", err)
	}

	out, err := secretsmanager.NewFromConfig(cfg).GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(ref),
	})
	if err != nil {
		return "", fmt.Errorf("getting secret %q: %w", ref, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %q has no string value (binary secrets not supported)", ref)
	}
	return *out.SecretString, nil
}
