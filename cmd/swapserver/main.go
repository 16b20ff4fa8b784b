package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tonswap/TON-EVM-Bridge/cmd/utils"
	"github.com/tonswap/TON-EVM-Bridge/internal/swapapi"
	"github.com/tonswap/TON-EVM-Bridge/keystore"
	"github.com/tonswap/TON-EVM-Bridge/log"
	"github.com/tonswap/TON-EVM-Bridge/mongodb"
	"github.com/tonswap/TON-EVM-Bridge/notify"
	"github.com/tonswap/TON-EVM-Bridge/params"
	"github.com/tonswap/TON-EVM-Bridge/queue"
	"github.com/tonswap/TON-EVM-Bridge/riskctrl"
	rpcserver "github.com/tonswap/TON-EVM-Bridge/rpc/server"
	"github.com/tonswap/TON-EVM-Bridge/tokens"
	"github.com/tonswap/TON-EVM-Bridge/tokens/eth"
	"github.com/tonswap/TON-EVM-Bridge/tokens/ton"
	"github.com/tonswap/TON-EVM-Bridge/worker"
)

var (
	clientIdentifier = "swapserver"
	// Git SHA1 commit hash of the release (set via linker flags)
	gitCommit = ""
	gitDate   = ""
	// The app that holds all commands and flags.
	app = utils.NewApp(clientIdentifier, gitCommit, gitDate, "the swapserver command line interface")
)

func initApp() {
	app.Action = swapserver
	app.HideVersion = true // we have a command to print the version
	app.Commands = []*cli.Command{
		utils.VersionCommand,
	}
	app.Flags = []cli.Flag{
		utils.ConfigFileFlag,
		utils.LogFileFlag,
		utils.LogRotationFlag,
		utils.LogMaxAgeFlag,
		utils.VerbosityFlag,
		utils.JSONFormatFlag,
		utils.ColorFormatFlag,
	}
	sort.Sort(cli.CommandsByName(app.Commands))
}

func main() {
	initApp()
	if err := app.Run(os.Args); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func swapserver(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	if ctx.NArg() > 0 {
		return fmt.Errorf("invalid command: %q", ctx.Args().Get(0))
	}
	exitCh := make(chan struct{})

	configFile := utils.GetConfigFilePath(ctx)
	config := params.LoadConfig(configFile)
	serverCfg := config.Server
	if serverCfg == nil {
		log.Fatal("must config 'Server' section for swapserver")
	}

	if err := tokens.SetTokenPairsConfig(config.Pairs); err != nil {
		log.Fatal("set token pairs failed", "err", err)
	}
	tokens.RegisterBridge(tokens.ChainETH, eth.NewCrossChainBridge(config.EthChain, config.EthGateway))
	tokens.RegisterBridge(tokens.ChainTON, ton.NewCrossChainBridge(config.TonChain, config.TonGateway))

	if err := keystore.LoadKeyFile(serverCfg.KeystoreFile); err != nil {
		log.Fatal("load keystore failed", "keystoreFile", serverCfg.KeystoreFile, "err", err)
	}

	dbConfig := serverCfg.MongoDB
	mongodb.MongoServerInit(clientIdentifier, dbConfig.DBURL, dbConfig.DBName, dbConfig.UserName, dbConfig.Password)

	if serverCfg.MatchDBDir != "" {
		if err := worker.OpenMatchDB(serverCfg.MatchDBDir); err != nil {
			log.Fatal("open match db failed", "dir", serverCfg.MatchDBDir, "err", err)
		}
	}

	notifier := notify.NewNotifier()
	jobQueue := queue.NewMongoQueue()
	swapapi.Init(jobQueue, notifier)

	worker.StartWork(jobQueue, notifier)
	time.Sleep(100 * time.Millisecond)
	rpcserver.StartAPIServer()

	params.WatchAndReloadPairsConfig()
	riskctrl.Work()

	<-exitCh
	return nil
}
