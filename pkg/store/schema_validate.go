package store

import (
	"bytes"
	"encoding/json"

	"github.com/Masterminds/semver/v3"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/agentralabs/agentic-identity/pkg/xerrors"
)

// identityFileSchema and recordEnvelopeSchema are the bundled JSON Schemas
// a caller MAY validate storage input against before LoadIdentity/
// RecordStore.Load ever touch it. Validation is optional and additive: a
// corrupted or truncated file already maps to KindEncoding via the normal
// json.Unmarshal failure path; this catches well-formed-but-wrong-shaped
// JSON earlier, with a clearer message.
const identityFileSchemaJSON = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["version", "format", "encryption", "encrypted_anchor_b64", "public_document"],
	"properties": {
		"version": {"type": "integer"},
		"format": {"type": "string"},
		"encryption": {
			"type": "object",
			"required": ["algorithm", "kdf", "salt_b64", "nonce_b64"],
			"properties": {
				"algorithm": {"type": "string"},
				"kdf": {"type": "string"},
				"salt_b64": {"type": "string"},
				"nonce_b64": {"type": "string"}
			}
		},
		"encrypted_anchor_b64": {"type": "string"},
		"public_document": {"type": "object"}
	}
}`

const recordEnvelopeSchemaJSON = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["version", "record"],
	"properties": {
		"version": {"type": "integer"}
	}
}`

func compileSchema(name, source string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader([]byte(source))); err != nil {
		return nil, err
	}
	return compiler.Compile(name)
}

// ValidateIdentityFileJSON checks raw identity-file bytes against the
// bundled identity-file schema before LoadIdentity attempts to decrypt
// it. Schema failures map to KindEncoding ("InvalidFileFormat" per
// spec.md §7), matching the distinguishability LoadIdentity already gives
// a wrong passphrase (KindCrypto) versus a malformed file (KindEncoding).
func ValidateIdentityFileJSON(data []byte) error {
	const op = "store.ValidateIdentityFileJSON"
	schema, err := compileSchema("identity_file.json", identityFileSchemaJSON)
	if err != nil {
		return xerrors.Wrap(xerrors.KindEncoding, op, err)
	}
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return xerrors.Wrap(xerrors.KindEncoding, op, err)
	}
	if err := schema.Validate(v); err != nil {
		return xerrors.Wrap(xerrors.KindEncoding, op, err)
	}
	return nil
}

// ValidateRecordEnvelopeJSON checks raw per-record-store bytes against the
// bundled {version, record} envelope schema.
func ValidateRecordEnvelopeJSON(data []byte) error {
	const op = "store.ValidateRecordEnvelopeJSON"
	schema, err := compileSchema("record_envelope.json", recordEnvelopeSchemaJSON)
	if err != nil {
		return xerrors.Wrap(xerrors.KindEncoding, op, err)
	}
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return xerrors.Wrap(xerrors.KindEncoding, op, err)
	}
	if err := schema.Validate(v); err != nil {
		return xerrors.Wrap(xerrors.KindEncoding, op, err)
	}
	return nil
}

// CompatibleFormatRange is the semver constraint this build of the store
// package can read. IdentityFileFormat itself ("aid-v1") is a fixed wire
// tag, not a semver string; the compatibility range instead applies to an
// optional numeric "schema_version" a future format bump may add inside
// public_document, so old readers can fail closed on a format they don't
// understand instead of silently misreading it.
const CompatibleFormatRange = ">=1.0.0, <2.0.0"

// CheckFormatCompatibility parses schemaVersion (a semver string) and
// reports whether this build declares support for it.
func CheckFormatCompatibility(schemaVersion string) (bool, error) {
	const op = "store.CheckFormatCompatibility"
	constraint, err := semver.NewConstraint(CompatibleFormatRange)
	if err != nil {
		return false, xerrors.Wrap(xerrors.KindEncoding, op, err)
	}
	v, err := semver.NewVersion(schemaVersion)
	if err != nil {
		return false, xerrors.Wrap(xerrors.KindEncoding, op, err)
	}
	return constraint.Check(v), nil
}
