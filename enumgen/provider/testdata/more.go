package testdata

const Violet Color = 10
