package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"edgelink.local/internal/app/shortlink"
	"edgelink.local/internal/app/shortlink/edge"
	"edgelink.local/internal/app/shortlink/repo"
	"edgelink.local/internal/app/shortlink/signer"
	"edgelink.local/internal/platform/awscfg"
	"edgelink.local/internal/platform/config"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Lambda@Edge functions get no environment variables; settings come from a
// bundled .env, which config.Load reads.
func main() {
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	awsConf, err := awscfg.Load(ctx, cfg.AWSRegion)
	cancel()
	if err != nil {
		log.Fatal(err)
	}

	store := repo.NewDynamoStore(dynamodb.NewFromConfig(awsConf), cfg.DynamoDBTable)
	resolver := shortlink.NewResolver(store, signer.NewS3SignerFromConfig(awsConf))

	lambda.Start(edge.NewRedirectHandler(resolver).Handle)
}
