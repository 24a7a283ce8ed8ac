// Package service wires the projectlens core from a YAML configuration:
// persistence, blob storage, embedding and generation models, memory,
// ingestion and the conversation controller.
//
// This package is intended for embedding projectlens into other programs
// without shelling out to the CLI.
package service
