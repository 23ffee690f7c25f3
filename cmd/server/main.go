package main

import (
	_ "github.com/misty-step/bibliomnomnom-sub004/docs"
	"github.com/misty-step/bibliomnomnom-sub004/internal/bootstrap"
)

// @title Bibliomnomnom API
// @version 1.0.0
// @description API server for the bibliomnomnom reading companion

// @host api.bibliomnomnom.example.com
// @BasePath /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	bootstrap.Run()
}
