package main

import (
	"context"

	"github.com/edufacil/efs/core"
	"github.com/edufacil/efs/core/user"
)

func (cli *commandLine) resetPassword(sid, pwd string) error {
	ctx := context.Background()
	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{SIDOrEmail: core.CleanString(sid, true /* lower */)})
	if err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.usrRepo.UpdateUser(ctx, usr, nil); err != nil {
		return err
	}
	return nil
}
