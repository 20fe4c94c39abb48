package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"bizdash/core/app"
	"bizdash/core/auth"
	"bizdash/core/settings"
	entity "bizdash/model/entity"
)

var settingType string

var settingsGetCmd = &cobra.Command{
	Use:   "settings:get CATEGORY [KEY]",
	Short: "Print one setting, or a whole category as JSON",
	Args:  cobra.RangeArgs(1, 2),
	RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
		var v interface{}
		var err error
		if len(args) == 1 {
			v, err = a.Deps.Settings.GetCategory(ctx, args[0])
		} else {
			v, err = a.Deps.Settings.Get(ctx, args[0], args[1], nil)
		}
		if err != nil {
			return err
		}
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	}),
}

var settingsSetCmd = &cobra.Command{
	Use:   "settings:set CATEGORY KEY VALUE",
	Short: "Store a setting",
	Args:  cobra.ExactArgs(3),
	RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
		if err := setSetting(ctx, a.Deps.Settings, args[0], args[1], args[2], settingType); err != nil {
			return err
		}
		fmt.Printf("%s/%s updated\n", args[0], args[1])
		return nil
	}),
}

// setSetting decodes raw according to typ and stores it. The enabled module list is
// refused so protected modules cannot be dropped behind modules:disable's back.
func setSetting(ctx context.Context, store *settings.Store, category, key, raw, typ string) error {
	if settings.IsReserved(category, key) {
		return fmt.Errorf("%w: use modules:enable or modules:disable", settings.ErrReservedSetting)
	}
	var v interface{} = raw
	if typ == entity.SettingTypeJSON {
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return fmt.Errorf("value is not valid JSON: %w", err)
		}
	}
	return store.Set(ctx, category, key, v, typ)
}

var adminPasswordCmd = &cobra.Command{
	Use:   "admin:password USERNAME PASSWORD",
	Short: "Set a dashboard user's password, creating the user if missing",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
		created, err := auth.NewService(a.DB, a.Config.BcryptCost).SetPassword(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("User %s created\n", args[0])
		} else {
			fmt.Printf("Password for %s updated\n", args[0])
		}
		return nil
	}),
}

func init() {
	settingsSetCmd.Flags().StringVarP(&settingType, "type", "t", entity.SettingTypeString, "Value type: string, boolean or json")
	rootCmd.AddCommand(settingsGetCmd, settingsSetCmd, adminPasswordCmd)
}
