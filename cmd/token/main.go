// token は API 呼び出し用の Bearer トークンを JWT_SECRET で署名して出力します。
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"stock_backtest/internal/platform/config"
	jwtmw "stock_backtest/internal/platform/jwt"
)

func main() {
	subject := flag.String("sub", "cli", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	token, err := jwtmw.NewIssuer(cfg.JWT.Secret, *ttl).Issue(*subject)
	if err != nil {
		fmt.Fprintln(os.Stderr, "issue token:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
