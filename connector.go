package olake

import (
	"os"

	_ "github.com/datazip-inc/olake-hubspot/destination/parquet" // registering local parquet writer
	_ "github.com/datazip-inc/olake-hubspot/destination/stdout"  // registering stdout writer
	"github.com/datazip-inc/olake-hubspot/protocol"
	"github.com/datazip-inc/olake-hubspot/utils/logger"
	"github.com/datazip-inc/olake-hubspot/utils/safego"
)

func RegisterDriver(driver any) {
	defer safego.Recovery(true)

	// Execute the root command
	err := protocol.CreateRootCommand(true, driver).Execute()
	if err != nil {
		logger.Fatal(err)
	}

	os.Exit(0)
}
