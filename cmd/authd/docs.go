package main

// General API documentation for swaggo. Regenerate with `swag init -g cmd/authd/docs.go -o docs`.
//
// @title           authd API
// @version         1.0
// @description     Minimal authentication backend: password login against a MongoDB user collection.
//
// @contact.name   authd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
