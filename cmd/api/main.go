package main

// @title WhatsApp Checker API
// @version 1.0
// @description Checks whether phone numbers have a WhatsApp account through one linked session.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @host localhost:3000
// @BasePath /
// @schemes http
import (
	_ "whatsapp-checker/docs"
	protocol "whatsapp-checker/protocal"

	"github.com/sirupsen/logrus"
)

func main() {
	err := protocol.ServeHTTP()
	if err != nil {
		logrus.Fatalln(err)
	}
}
