package main

import (
	"github.com/datazip-inc/olake-hubspot"
	driver "github.com/datazip-inc/olake-hubspot/drivers/hubspot/internal"
)

func main() {
	olake.RegisterDriver(&driver.HubSpot{})
}
