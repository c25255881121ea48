package main

import (
	"flag"
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/binpoll/binpoll-settler/app"
	"github.com/binpoll/binpoll-settler/config"
	"github.com/binpoll/binpoll-settler/logging"
)

func initFlags() {
	flag.String(config.FlagConfigPath, "", "config file path")
	flag.String(config.FlagConfigType, "aws_private_key", "config type, local_private_key or aws_private_key")
	flag.String(config.FlagConfigAwsRegion, "", "aws region")
	flag.String(config.FlagConfigAwsSecret, "", "aws secret key")
	flag.String(config.FlagConfigPrivateKey, "", "settler private key")
	flag.String(config.FlagConfigDbPass, "", "settler db password")

	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	pflag.Parse()
	err := viper.BindPFlags(pflag.CommandLine)
	if err != nil {
		panic(err)
	}
}

func printUsage() {
	fmt.Print("usage: ./binpoll-settler --config-type local --config-path configFile\n")
	fmt.Print("usage: ./binpoll-settler --config-type aws --aws-region awsRegion --aws-secret-key awsSecretKey\n")
}

func main() {
	initFlags()
	configType := viper.GetString(config.FlagConfigType)
	if configType != config.AWSConfig && configType != config.LocalConfig {
		printUsage()
		return
	}
	var cfg *config.Config

	if configType == config.AWSConfig {
		awsSecretKey := viper.GetString(config.FlagConfigAwsSecret)
		if awsSecretKey == "" {
			printUsage()
			return
		}

		awsRegion := viper.GetString(config.FlagConfigAwsRegion)
		if awsRegion == "" {
			printUsage()
			return
		}

		configContent, err := config.GetSecret(awsSecretKey, awsRegion)
		if err != nil {
			fmt.Printf("get aws config error, err=%+v", err.Error())
			return
		}
		cfg = config.ParseConfigFromJson(configContent)
	} else {
		configFilePath := viper.GetString(config.FlagConfigPath)
		if configFilePath == "" {
			printUsage()
			return
		}
		cfg = config.ParseConfigFromFile(configFilePath)
	}

	if cfg == nil {
		fmt.Println("failed to get configuration")
		return
	}

	logging.InitLogger(&cfg.LogConfig)

	app.NewApp(cfg).Start()
	select {}
}
