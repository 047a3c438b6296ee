package database

import (
	"crm/utils"
	"os"
	"time"
)

const (
	MONGO_TIMEOUT        = 20 * time.Second
	COLLECTION_MEMBERS   = "members"
	COLLECTION_PIPELINES = "pipelines"
	COLLECTION_DEALS     = "deals"
	COLLECTION_LEADS     = "leads"
)

func GetDB() string {
	environment := os.Getenv(utils.ENV)

	if environment == utils.ENV_RELEASE {
		return "production"
	}

	if environment == utils.ENV_HOMOLOG {
		return "homolog"
	}

	if environment == utils.ENV_DEVELOPMENT {
		return "development"
	}

	panic("[MongoDB] Invalid DB name")
}
