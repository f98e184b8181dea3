package main

// General API documentation for swaggo. Regenerate docs/ with `swag init -g cmd/mtbench/docs.go -o cmd/mtbench/docs`.
//
// @title           mtbench API
// @version         1.0
// @description     HTTP API for MBART/MBART50/M2M100 translation benchmarking.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
